// Package lyrics handles the text side of the corpus: splitting raw
// lyric sheets into sections, cleaning text for embedding, and the
// normalization and fuzzy matching used to reconcile song titles and
// artists across catalogs.
package lyrics
