package slax

import (
	"slices"
)

type kwFlags uint8

const (
	kwNodeTest kwFlags = 1 << iota
	kwSlax
	kwXPath
	kwJSON
)

// LexFlags control which family of keywords the lexer recognizes.
type LexFlags uint16

const (
	NoSlaxKeywords LexFlags = 1 << iota
	NoXPathKeywords
	JSONKeywords
	Strict
	LineComments
)

const NoKeywords = NoSlaxKeywords | NoXPathKeywords

const (
	kwAppend          = "append"
	kwApplyImports    = "apply-imports"
	kwApplyTemplates  = "apply-templates"
	kwAttribute       = "attribute"
	kwCall            = "call"
	kwComment         = "comment"
	kwCopyNode        = "copy-node"
	kwCopyOf          = "copy-of"
	kwElement         = "element"
	kwElse            = "else"
	kwExclude         = "exclude"
	kwExpr            = "expr"
	kwExtension       = "extension"
	kwFallback        = "fallback"
	kwFor             = "for"
	kwForEach         = "for-each"
	kwFunction        = "function"
	kwIf              = "if"
	kwImport          = "import"
	kwInclude         = "include"
	kwKey             = "key"
	kwMatch           = "match"
	kwMessage         = "message"
	kwMode            = "mode"
	kwMvar            = "mvar"
	kwNs              = "ns"
	kwNumber          = "number"
	kwOutputMethod    = "output-method"
	kwParam           = "param"
	kwPreserveSpace   = "preserve-space"
	kwPriority        = "priority"
	kwResult          = "result"
	kwSet             = "set"
	kwSort            = "sort"
	kwStripSpace      = "strip-space"
	kwTemplate        = "template"
	kwTerminate       = "terminate"
	kwUexpr           = "uexpr"
	kwValue           = "value"
	kwVar             = "var"
	kwVersion         = "version"
	kwWith            = "with"
	kwAnd             = "and"
	kwOr              = "or"
	kwDiv             = "div"
	kwMod             = "mod"
	kwText            = "text"
	kwNode            = "node"
	kwID              = "id"
	kwProcessing      = "processing-instruction"
	kwTrue            = "true"
	kwFalse           = "false"
	kwNull            = "null"
	kwCount           = "count"
	kwFormat          = "format"
	kwFrom            = "from"
	kwLevel           = "level"
	kwLanguage        = "language"
	kwLetterValue     = "letter-value"
	kwGroupSeparator  = "grouping-separator"
	kwGroupSize       = "grouping-size"
	kwOrder           = "order"
	kwDataType        = "data-type"
	kwCaseOrder       = "case-order"
	kwIndent          = "indent"
	kwEncoding        = "encoding"
	kwMediaType       = "media-type"
	kwStandalone      = "standalone"
	kwDoctypePublic   = "doctype-public"
	kwDoctypeSystem   = "doctype-system"
	kwOmitDeclaration = "omit-xml-declaration"
	kwCdataElements   = "cdata-section-elements"
	kwUseAttrSets     = "use-attribute-sets"
)

var keywords = map[string]kwFlags{
	kwAnd:             kwXPath,
	kwOr:              kwXPath,
	kwDiv:             kwXPath,
	kwMod:             kwXPath,
	kwAppend:          kwSlax,
	kwApplyImports:    kwSlax,
	kwApplyTemplates:  kwSlax,
	kwAttribute:       kwSlax,
	kwCall:            kwSlax,
	kwCaseOrder:       kwSlax,
	kwCdataElements:   kwSlax,
	kwComment:         kwSlax | kwNodeTest,
	kwCopyNode:        kwSlax,
	kwCopyOf:          kwSlax,
	kwCount:           kwSlax | kwNodeTest,
	kwDataType:        kwSlax,
	kwDoctypePublic:   kwSlax,
	kwDoctypeSystem:   kwSlax,
	kwElement:         kwSlax,
	kwElse:            kwSlax,
	kwEncoding:        kwSlax,
	kwExclude:         kwSlax,
	kwExpr:            kwSlax,
	kwExtension:       kwSlax,
	kwFallback:        kwSlax,
	kwFor:             kwSlax,
	kwForEach:         kwSlax,
	kwFormat:          kwSlax,
	kwFrom:            kwSlax,
	kwFunction:        kwSlax,
	kwGroupSeparator:  kwSlax,
	kwGroupSize:       kwSlax,
	kwID:              kwNodeTest,
	kwIf:              kwSlax,
	kwImport:          kwSlax,
	kwInclude:         kwSlax,
	kwIndent:          kwSlax,
	kwKey:             kwSlax | kwNodeTest,
	kwLanguage:        kwSlax,
	kwLetterValue:     kwSlax,
	kwLevel:           kwSlax,
	kwMatch:           kwSlax,
	kwMediaType:       kwSlax,
	kwMessage:         kwSlax,
	kwMode:            kwSlax,
	kwMvar:            kwSlax,
	kwNode:            kwNodeTest,
	kwNs:              kwSlax,
	kwNumber:          kwSlax,
	kwOmitDeclaration: kwSlax,
	kwOrder:           kwSlax,
	kwOutputMethod:    kwSlax,
	kwParam:           kwSlax,
	kwPreserveSpace:   kwSlax,
	kwPriority:        kwSlax,
	kwProcessing:      kwSlax | kwNodeTest,
	kwResult:          kwSlax,
	kwSet:             kwSlax,
	kwSort:            kwSlax,
	kwStandalone:      kwSlax,
	kwStripSpace:      kwSlax,
	kwTemplate:        kwSlax,
	kwTerminate:       kwSlax,
	kwText:            kwNodeTest,
	kwUexpr:           kwSlax,
	kwUseAttrSets:     kwSlax,
	kwValue:           kwSlax,
	kwVar:             kwSlax,
	kwVersion:         kwSlax,
	kwWith:            kwSlax,
	kwTrue:            kwJSON,
	kwFalse:           kwJSON,
	kwNull:            kwJSON,
}

// disables gives the keyword families turned off until the end of the
// statement once a keyword has been returned.
var disables = map[string]LexFlags{
	kwAppend:          NoSlaxKeywords,
	kwApplyTemplates:  NoSlaxKeywords,
	kwAttribute:       NoSlaxKeywords,
	kwComment:         NoSlaxKeywords,
	kwCopyOf:          NoSlaxKeywords,
	kwCount:           NoSlaxKeywords,
	kwElement:         NoSlaxKeywords,
	kwExpr:            NoSlaxKeywords,
	kwFor:             NoSlaxKeywords,
	kwForEach:         NoSlaxKeywords,
	kwFormat:          NoSlaxKeywords,
	kwFrom:            NoSlaxKeywords,
	kwGroupSeparator:  NoSlaxKeywords,
	kwGroupSize:       NoSlaxKeywords,
	kwIf:              NoSlaxKeywords,
	kwKey:             NoSlaxKeywords,
	kwLanguage:        NoSlaxKeywords,
	kwLetterValue:     NoSlaxKeywords,
	kwMatch:           NoSlaxKeywords,
	kwMode:            NoSlaxKeywords,
	kwMessage:         NoSlaxKeywords,
	kwMvar:            NoSlaxKeywords,
	kwNumber:          NoSlaxKeywords,
	kwParam:           NoSlaxKeywords,
	kwProcessing:      NoSlaxKeywords,
	kwResult:          NoSlaxKeywords,
	kwSet:             NoSlaxKeywords,
	kwSort:            NoSlaxKeywords,
	kwTemplate:        NoSlaxKeywords,
	kwTerminate:       NoSlaxKeywords,
	kwUexpr:           NoSlaxKeywords,
	kwVar:             NoSlaxKeywords,
	kwValue:           NoSlaxKeywords,
	kwWith:            NoSlaxKeywords,
	kwCall:            NoKeywords,
	kwCdataElements:   NoKeywords,
	kwDoctypePublic:   NoKeywords,
	kwDoctypeSystem:   NoKeywords,
	kwEncoding:        NoKeywords,
	kwFunction:        NoKeywords,
	kwIndent:          NoKeywords,
	kwMediaType:       NoKeywords,
	kwNs:              NoKeywords,
	kwOmitDeclaration: NoKeywords,
	kwPreserveSpace:   NoKeywords,
	kwStandalone:      NoKeywords,
	kwStripSpace:      NoKeywords,
	kwUseAttrSets:     NoKeywords,
	kwVersion:         NoKeywords,
}

var axisNames = []string{
	"ancestor",
	"ancestor-or-self",
	"attribute",
	"child",
	"descendant",
	"descendant-or-self",
	"following",
	"following-sibling",
	"namespace",
	"parent",
	"preceding",
	"preceding-sibling",
	"self",
}

func isAxisName(str string) bool {
	return slices.Contains(axisNames, str)
}

// statements lists the keywords that can start a statement. It feeds the
// suggestions given when an unknown statement is found.
var statements = []string{
	kwAppend,
	kwApplyImports,
	kwApplyTemplates,
	kwAttribute,
	kwCall,
	kwComment,
	kwCopyNode,
	kwCopyOf,
	kwElement,
	kwExpr,
	kwFallback,
	kwFor,
	kwForEach,
	kwFunction,
	kwIf,
	kwImport,
	kwInclude,
	kwKey,
	kwMatch,
	kwMessage,
	kwMode,
	kwMvar,
	kwNs,
	kwNumber,
	kwOutputMethod,
	kwParam,
	kwPreserveSpace,
	kwPriority,
	kwResult,
	kwSet,
	kwSort,
	kwStripSpace,
	kwTemplate,
	kwTerminate,
	kwUexpr,
	kwVar,
	kwVersion,
	kwWith,
}
