package model

// Package model defines the domain data structures shared across the app:
// upscale tasks and their status enum. Structures are designed for direct
// binding in the UI and explicit state transitions.
