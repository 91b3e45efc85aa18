// Package textstats provides the language heuristics shared by detectors
// and the quality verifier: tokenisation, dictionary lookup, line
// classification, sentence splitting and token similarity.
//
// All functions are deterministic and free of I/O. The dictionary is an
// embedded English word list with light suffix stripping, which is enough
// to separate recognisable text from OCR noise produced by a misrotated
// page without modelling any particular language.
package textstats
