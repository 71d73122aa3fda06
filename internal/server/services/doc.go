// Package services implements the server side of FileVault: the identity
// service (accounts and sessions) and the object storage service (file
// metadata, bytes, download links and previews).
package services
