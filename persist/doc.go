// Package persist saves and restores the full linking state of an
// experiment: positions, links, anomaly tags, track markers, shapes and
// the dataset resolution.
//
// The on-disk format is a single JSON document inside a zstandard
// frame. JSON keeps the files inspectable with standard tooling once
// decompressed; zstd keeps large experiments small. A snapshot restored
// with Load rebuilds graphs and shape maps equal to the saved ones.
package persist
