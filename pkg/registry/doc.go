// Package registry describes published packages and where to find them.
//
// A [Store] answers two questions for the cost aggregator: what does a
// concrete package version declare ([Store.Lookup]), and which versions of
// a name exist ([Store.Versions]). Three implementations are provided:
//
//   - [MemoryStore]: in-process, populated with [MemoryStore.Add]
//   - [MongoStore]: a MongoDB collection, populated with [MongoStore.Put]
//   - [NPMStore]: the live npm registry through integrations/npm
//
// Package versions are addressed by [ID], a name-based UUID derived from
// "name@version". The same pair always yields the same ID, so IDs can be
// minted by any component without coordination.
//
// A [Sizer] measures the standalone install size of a package.
// [DeclaredSizer] uses the unpacked size the registry recorded at publish
// time.
package registry
