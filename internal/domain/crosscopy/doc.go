// Package crosscopy duplicates placed components between the desktop
// and mobile canvases: deep clones, fresh identifiers, and schema-driven
// remapping of canvas-conditional prop values.
package crosscopy
