// Package catalog appends accepted words to the JSON catalogs read by the
// flashcard apps. A catalog is an object of named arrays holding either bare
// word strings or {"word", "weight"} records.
package catalog
