// Package archive turns a postgresql binaries distribution into a directory
// of runnable executables.
//
// A distribution is a zip container (the upstream .jar) holding one
// xz-compressed tarball (.txz). Unpack runs three strictly sequential stages,
// each producing an intermediate file next to the destination that is removed
// once the following stage has consumed it:
//
//	archive.zip --unzip--> postgres-<platform>.txz --xz--> postgres-<platform>.tar --untar--> destDir/{bin,lib,share}
//
// Re-running Unpack against the same destination overwrites existing files.
// Partial artifacts from a failed stage are left in place for the caller's
// next attempt to overwrite.
package archive
