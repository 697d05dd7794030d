// Package textutil ranks short scripture passages against a free-text query.
//
// Tokens are lowercase, accent-folded words of at least three characters with
// common translation stop words removed. Rank weighs them by inverse document
// frequency over the candidate set so rare terms such as "shepherd" outweigh
// frequent ones.
package textutil
