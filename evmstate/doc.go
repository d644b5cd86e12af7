// Package evmstate decodes a raw Ethereum storage diff into a labeled,
// path-annotated trace using a Solidity storage-layout descriptor.
//
// The engine is single-threaded and synchronous: one call to Decode depends
// only on its DecodeRequest and never touches the network, disk, or an EVM.
// Callers that replay or simulate a transaction are expected to hand this
// package the resulting storage diff, the layout of every touched contract,
// and whatever candidate mapping keys they can harvest from calldata and the
// execution stack.
package evmstate
