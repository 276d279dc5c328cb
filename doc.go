/*
Package supranim provides the request-acceptance and dispatch core of a
small MVC web framework: a non-blocking HTTP/1.1 server multiplexing
many client sockets over a fixed pool of event-loop workers, and a
pattern-based router executing ordered middleware chains with
abort/redirect short-circuit semantics.

Quick Start

Basic usage example:

	package main

	import (
	    "github.com/supranim/supranim-sub001/app"
	    "github.com/supranim/supranim-sub001/config"
	    "github.com/supranim/supranim-sub001/core/http"
	)

	func main() {
	    cfg := config.New()
	    application := app.New(cfg)

	    r := application.Router()
	    r.Get("/", func(req *http.Request, res *http.Response) {
	        res.Text(200, "Hello, World!")
	    })
	    r.Get("/orders/{id}", func(req *http.Request, res *http.Response) {
	        res.JSON(200, map[string]string{"order": req.Param(0)})
	    })

	    application.Run()
	}

Modules

The framework core is organized into several modules:

  - app: application lifecycle management
  - config: configuration loading (flags and environment)
  - core/http: connection buffering, lazy request facade, response builder
  - core/router: route compilation, two-tier matching, middleware chains
  - core/middleware: stock middleware in the chain-runner contract
  - core/server: event-loop workers, accept fan-out, dispatch
  - core/poller: I/O multiplexing (epoll/kqueue)
  - core/http2: cleartext HTTP/2 side listener
  - core/codec: JSON and Protobuf body codecs

Route paths use brace placeholders matched by shape: /orders/{id}
captures digit segments, /posts/{slug} captures alphanumeric-hyphen
segments, and reserved keywords (id, slug, alpha, digits, date, year,
month, day) pick the pattern kind directly. A leading '?' inside the
braces marks the segment optional. Routes without placeholders resolve
by exact match in O(1); dynamic routes match structurally in
registration order.
*/
package supranim
