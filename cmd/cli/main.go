// Package main provides the entry point for the bookstudy CLI.
//
// bookstudy turns photographed pages of an English book into a
// Japanese study report: extracted text, translation, grammar pattern
// explanations and a vocabulary list.
//
// Usage:
//
//	bookstudy analyze <image-directory>
//	bookstudy analyze --azure-container <name>
//
// See --help for all available options.
package main

// main is the entry point for bookstudy.
func main() {
	Execute()
}
