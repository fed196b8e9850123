// Package model owns the data types shared by every transport adapter,
// codec, and the session pipeline.
//
// Ownership boundary:
// - device/adapter identity and options
// - per-chunk and per-frame metadata
// - decoded-frame field representation
package model
