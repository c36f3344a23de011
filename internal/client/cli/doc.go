// Package cli implements the interactive mangasync client.
//
// The client signs in against the sync server, keeps the session token in a
// small SQLite database under the data directory, and moves the favourites
// and history packages between the server and JSON files:
//
//	ms (reader@example.com)> pull favourites favourites.json
//	ms (reader@example.com)> push history history.json
//
// A push that changes nothing on the server leaves the file untouched.
// Otherwise the file is rewritten with the merged package the server returns.
package cli
