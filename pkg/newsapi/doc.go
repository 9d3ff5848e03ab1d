// Package newsapi is a client for the NewsAPI v2 HTTP API.
//
// Each supported operation is described by an Endpoint value. BuildRequest turns an
// Endpoint into a Request, Dispatch sends it on its own goroutine, and the response
// body is decoded into ArticleList or AllNewsSources. Every call reports exactly one
// Result to its continuation, which runs on the Executor the Client was built with.
package newsapi
