// Package geom provides the bounding-box arithmetic used by diagram placement
// and edge rendering.
//
// Coordinates are screen coordinates: x grows to the right and y grows
// downward, so a [Rect]'s Top is its smallest y. All functions are pure.
//
//	r := geom.Rect{Left: 0, Top: 0, Width: 100, Height: 50}
//	r.Right()      // 100
//	r.MidRight()   // {100 25}
package geom
