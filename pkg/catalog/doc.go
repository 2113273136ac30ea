// Package catalog holds the entity classes a diagram can show.
//
// A catalog is a TOML document listing classes with their fields and the
// relations that lead to other classes:
//
//	name = "shop"
//
//	[[class]]
//	id = "shop.Customer"
//	description = "A person or company that places orders"
//	field = [{ name = "id", type = "uuid" }]
//	relation = [{ name = "orders", target = "shop.Order", many = true }]
//
// Hosts list [Catalog.Classes] to pick roots, follow [Catalog.Related] to
// drill into children, and load node content through a [Loader]. Content
// only affects a node's size; it plays no part in placement decisions.
package catalog
