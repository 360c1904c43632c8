// Package project loads project configurations.
//
// A project file names the project, its default charset, the index and
// search servers and declares one section per field:
//
//	project.name = demo
//	project.default_charset = utf-8
//	server.index = 8383
//	server.search = 8384
//
//	[pid]
//	type = id
//
//	[subject]
//	type = title
//
//	[message]
//	type = body
//
// server.index may list several servers separated by ';', the first one is
// the primary and every write is replayed to the others. server.search lists
// candidates that are tried in random order.
//
// The same structure can be written in yaml, see ParseYAML.
package project
