// Package processor drives one content-preparation run: it checks the word
// list against the PDF, renders the pages into a temporary run directory,
// synthesizes a recording per word and, once a reviewer accepts words,
// promotes them into the shared asset store and appends them to catalogs.
package processor
