// Package unix implements the unix domain socket connector of the client
// transport. See package base for the transport itself.
package unix
