// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package documents ("packuments") from the npm
// registry (https://registry.npmjs.org). A packument lists every published
// version with its runtime dependencies and, where the registry recorded it,
// the unpacked size of the tarball.
//
// # Usage
//
//	client := npm.NewClient(store, 24*time.Hour)
//
//	pkg, err := client.FetchPackage(ctx, "express", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := pkg.Versions[pkg.Latest]
//	fmt.Println(v.Version, v.UnpackedSize, v.Dependencies)
//
// # Caching
//
// Responses are cached to reduce load on the registry. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
//
// devDependencies, peerDependencies, and optionalDependencies are not
// included; they are not installed alongside the package.
package npm
