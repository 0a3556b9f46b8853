// Package connectors holds clients for the platforms comments are fetched
// from. Each connector implements driven.CommentFetcher for one platform.
package connectors
