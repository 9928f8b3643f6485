// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application; this package only defines the
// listen address, API key and shutdown bound it reads.
package server
