// Package devserver implements a development bid authority:
// the REST endpoints the client pulls from, the submission endpoint,
// and the push channel that broadcasts every accepted bet to every
// connected socket. There are no per-product topics; clients filter
// locally.
package devserver
