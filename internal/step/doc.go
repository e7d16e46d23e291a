// Package step reads and writes ISO-10303-21 exchange files, the clear-text
// encoding used for IFC building models.
//
// A file is a header, a body of numbered entity records and a footer:
//
//	ISO-10303-21;
//	HEADER;
//	FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
//	FILE_NAME('wall.ifc','2024-01-01T00:00:00',(''),(''),'','','');
//	FILE_SCHEMA(('IFC4'));
//	ENDSEC;
//
//	DATA;
//	#1=IFCPERSON($,$,'Mario',$,$,$,$,$);
//	#2=IFCWALL('2O2Fr$t4X7Zf8NOew3FL9r',#1,'Wall',$,$,$,$,$,$);
//	ENDSEC;
//	END-ISO-10303-21;
//
// # Records and entities
//
// Body records are captured verbatim as a [Record] (keyword plus argument
// text) when a file is parsed. Nothing about the concrete type is needed up
// front, so unknown keywords survive a round trip untouched. A record is
// decoded into a concrete [Entity] only when a caller asks for it through a
// [TypedID]:
//
//	wall, err := step.Get(f.Data, wallID)
//
// Entities describe their attribute layout with Params, a list of pointers to
// values that can scan and print themselves. Every attribute slot is usually an
// [Optional], which holds one of $ (omitted), * (inherited) or a value.
//
// # Round trip
//
// Whitespace and comments between statements are kept as leading trivia and
// records that were never edited are printed from their source text, so
//
//	Parse(s).String() == s
//
// holds for every valid input. Edited and newly inserted entities are printed
// from their structure in the canonical form #<id>=KEYWORD(args);.
package step
