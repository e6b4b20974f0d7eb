// Package lsx reads and writes the XML resource format.
//
//	<?xml version="1.0" encoding="utf-8"?>
//	<save>
//		<header version="2" time="131038713893820000" />
//		<version major="3" minor="1" revision="2" build="5" />
//		<region id="Config">
//			<node id="root">
//				<attribute id="Name" value="Sword" type="22" />
//				<children>
//					<node id="Item" />
//				</children>
//			</node>
//		</region>
//	</save>
//
// Version 2 files tag attributes with numeric type ids, version 3 files with
// type names. The decoder accepts either in any file. TranslatedString
// attributes carry an extra handle. Whitespace between elements is never
// significant.
package lsx
