// Package wally implements a small origin server speaking a subset of
// HTTP/1.1: GET and HEAD against a directory tree, with entity tags and the
// If-Match, If-None-Match and If-Modified-Since preconditions.
//
// # Key Components
//
//   - Header, Request, ReadRequest: a tolerant request parser that keeps only
//     the header fields the server understands
//   - Resource and Resolver: what a request URI maps to (see the filesystem
//     package for the directory-backed resolver)
//   - BuildResponse: the conditional response builder
//   - Service: routes requests to the resolver or the comment wall
//   - CommentRepo: persistence for wall comments (see database/sqlite,
//     database/postgres and database/mongo)
//
// # The Wall
//
// When enabled, the path /Wally serves a generated HTML page listing every
// stored comment followed by a form. A POST to the same path with the form
// fields username and comment stores a new comment.
//
// # Example Usage
//
//	resolver, err := filesystem.NewResolver(root, filesystem.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service, err := wally.NewService(resolver, repo, wally.ServiceConfig{WallEnabled: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := server.New(service, server.Config{})
//	err = srv.Serve(ctx, listener)
//
// See the server package for the connection handling and the admin package
// for the comment management API.
package wally
