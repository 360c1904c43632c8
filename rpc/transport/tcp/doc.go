// Package tcp implements the tcp socket connector of the client transport.
//
// Connections are opened with a connect timeout (default 5 seconds) and
// upgraded with the tcp options of common.ClientConfig (no delay, keep
// alive). See package base for the transport itself.
package tcp
