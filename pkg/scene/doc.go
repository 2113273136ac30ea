// Package scene replays scripted host interactions against a canvas.
//
// A scene is a TOML file describing what a user did, in order:
//
//	resolve = "id"
//
//	[[op]]
//	do = "add"
//	id = "shop.Customer"
//
//	[[op]]
//	do = "drill"
//	parent = "shop.Customer"
//	id = "shop.Order"
//
//	[[op]]
//	do = "drag"
//	id = "shop.Order"
//	x = 240
//	y = 80
//	steps = 4
//
// Each add or drill loads the class content, measures it with the bundled
// monospace face, and reports the size through the canvas's
// content-rendered signal, exactly as an interactive host would. The render
// command uses scenes to produce diagrams without a UI.
package scene
