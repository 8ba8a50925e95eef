// Package langchain implements extract.Parser on top of langchaingo's
// document loaders, with media-type sniffing to pick the loader.
package langchain
