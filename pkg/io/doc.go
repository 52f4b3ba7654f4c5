// Package io reads and writes diagram graphs in the JSON shape the diagram
// builders export:
//
//	{
//	  "name": "Build & Ship",
//	  "description": "main branch pipeline",
//	  "nodes": [
//	    {"id": "g", "label": "Policy", "type": "gate"},
//	    {"id": "s", "label": "Checkout", "type": "source", "sub": "git clone"}
//	  ],
//	  "edges": [{"from": "g", "to": "s"}]
//	}
//
// Node order in the file is preserved; the layout engine uses it to stack
// stages within a column.
package io
