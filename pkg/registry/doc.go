// Package registry provides shared HTTP plumbing for package registry
// clients: a common client with response caching, retry with exponential
// backoff, sentinel errors, and HTTP observability hooks.
//
// Concrete registries live in subpackages (see packagist). They embed
// [Client] and add endpoint-specific request and decode logic.
package registry
