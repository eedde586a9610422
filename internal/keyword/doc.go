// Package keyword ranks the most frequent meaningful Spanish words in a
// page's visible text: join, normalize, tokenize, drop stopwords, count.
package keyword
