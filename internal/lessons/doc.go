// Package lessons loads the lesson catalog from JSON and normalises "H:MM"
// durations into whole minutes so the catalog can be balanced.
package lessons
