// Package ast defines the template tree the lowering pass consumes, and a
// YAML/JSON document format for writing templates by hand.
//
// A document is a list of nodes. Every node sets exactly one kind key:
//
//	name: post
//	nodes:
//	  - element: article
//	    attrs:
//	      - name: class
//	        value: post
//	      - name: hidden
//	        toggle: "!visible"
//	    children:
//	      - element: h1
//	        children:
//	          - splice: post.title
//	      - if: post.body
//	        then:
//	          - splice: post.body
//	            sanitize: true
//	        else:
//	          - text: "Nothing here & now"
//	      - for: tag
//	        in: post.tags
//	        do:
//	          - element: span
//	            children: [{splice: tag}]
//
// `text` literals are escaped when lowered, `raw` literals are written as
// they are. Splices escape unless `mode: passthru` is set.
package ast
