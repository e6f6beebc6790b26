// Package types defines the shared data model for the builder backend:
// source artifacts, placed component instances, builder state, and the
// store event vocabulary. Types here carry no behavior beyond cloning;
// ownership rules live with the subsystems that hold them.
package types
