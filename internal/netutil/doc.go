// Package netutil hands out TCP ports for postgresql servers started by this
// process. PortRegistry remembers every port it has handed out or accepted,
// so two servers in one process never get the same port even though the
// kernel may offer a just-released port twice.
package netutil
