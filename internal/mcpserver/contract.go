package mcpserver

// FormatContract describes the exchange file rules that LLM consumers
// should follow when creating files.
const FormatContract = `# Exchange File Contract

Every file stored in the library MUST be a complete ISO-10303-21 (STEP
physical file) and MUST print back byte for byte after parsing.

## Structure

` + "```" + `
ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('house.ifc','2025-01-15T10:00:00',('Author'),('Org'),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCCARTESIANPOINT((0.,0.,0.));
#2=IFCLOCALPLACEMENT($,#1);
#3=IFCWALL('3vB2YO$MX4xv5uCqZZG05x',$,'North wall',$,$,#2,$,'W-01',.STANDARD.);
ENDSEC;
END-ISO-10303-21;
` + "```" + `

## Rules

1. **Header** holds exactly FILE_DESCRIPTION, FILE_NAME and FILE_SCHEMA, in that order.
2. **Instance ids** are ` + "`" + `#n` + "`" + ` with n > 0 and unique within the file.
   Forward references are allowed.
3. **Every reference must resolve.** A ` + "`" + `#n` + "`" + ` argument that names no
   instance is reported by verify_file as a problem.
4. **Arguments** are positional and follow the entity's attribute order:
   - ` + "`" + `$` + "`" + ` omits an optional attribute, ` + "`" + `*` + "`" + ` marks a derived one.
   - Strings use single quotes; a quote inside is doubled (` + "`" + `'it''s'` + "`" + `).
     Non-ASCII text uses ` + "`" + `\X2\...\X0\` + "`" + ` hex escapes.
   - Reals always carry a decimal point (` + "`" + `0.` + "`" + `, ` + "`" + `2.5` + "`" + `, ` + "`" + `1.E-3` + "`" + `).
   - Enumerations are dotted upper case (` + "`" + `.STANDARD.` + "`" + `, ` + "`" + `.T.` + "`" + `).
   - Lists are parenthesised (` + "`" + `(#1,#2)` + "`" + `).
5. **IFC GlobalIds** are 22 characters from ` + "`" + `0-9A-Za-z_$` + "`" + `, first character 0-3,
   and unique across the file.
6. **File paths** end with ` + "`" + `.ifc` + "`" + `, ` + "`" + `.stp` + "`" + ` or ` + "`" + `.step` + "`" + ` and use forward slashes.
7. **Encoding** is ASCII with a trailing newline after END-ISO-10303-21;.

## Importing

- Use the ` + "`" + `import_file` + "`" + ` tool to fetch a file from an http(s) URL or a
  ` + "`" + `data:application/p21;base64,...` + "`" + ` URI. The same rules apply.
`
