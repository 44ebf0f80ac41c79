// Package starwars maps the Star Wars characters onto a GraphQL graph.
//
// Droid and Human are the two variants of the Character interface. Each
// variant has a descriptor declaring its fields: plain projections of the
// entity, plus a friends field fetched through the variant's own
// repository. The Query descriptor exposes droid, human, randomDroid,
// randomHuman and info. Repositories are injected into the descriptor
// constructors; nothing here holds global state besides StaticInfo.
//
// Runtime adapts a Graph to executor.Runtime.
package starwars
