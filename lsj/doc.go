// Package lsj reads and writes the JSON resource format.
//
//	{
//	  "save": {
//	    "header": {"version": "3.1.2.5", "time": 131038713893820000},
//	    "regions": {
//	      "Config": {
//	        "root": {
//	          "Name": {"type": "FixedString", "value": "Sword"},
//	          "Item": [{"Index": {"type": "int32", "value": 0}}, {}]
//	        }
//	      }
//	    }
//	  }
//	}
//
// Each region holds a single key, the name of its root node. Within a node,
// attributes are objects with a type and a value (and a handle for
// translated strings) and children are arrays keyed by child name.
//
// Children are grouped by name in order of first appearance, so a node
// whose children interleave names ("A", "B", "A") is written with both "A"
// children first. Resources whose children are already grouped round trip
// exactly.
//
// The decoder tolerates comments and trailing commas.
package lsj
