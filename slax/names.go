package slax

import (
	"github.com/midbel/slax/mvar"
	"github.com/midbel/slax/xml"
)

const (
	XslUri  = "http://www.w3.org/1999/XSL/Transform"
	SlaxUri = "http://xml.libslax.org/slax"
	FuncUri = "http://exslt.org/functions"
	ExtUri  = "http://xmlsoft.org/XSLT/namespace"
)

const (
	xslPrefix  = "xsl"
	slaxPrefix = "slax"
	funcPrefix = "func"
	extPrefix  = "slax-ext"
)

const (
	xslStylesheet     = "stylesheet"
	xslTransform      = "transform"
	xslTemplate       = "template"
	xslApplyTemplates = "apply-templates"
	xslApplyImports   = "apply-imports"
	xslCallTemplate   = "call-template"
	xslWithParam      = "with-param"
	xslParam          = "param"
	xslVariable       = "variable"
	xslValueOf        = "value-of"
	xslCopyOf         = "copy-of"
	xslCopy           = "copy"
	xslText           = "text"
	xslIf             = "if"
	xslChoose         = "choose"
	xslWhen           = "when"
	xslOtherwise      = "otherwise"
	xslForEach        = "for-each"
	xslSort           = "sort"
	xslMessage        = "message"
	xslAttribute      = "attribute"
	xslElement        = "element"
	xslComment        = "comment"
	xslProcessing     = "processing-instruction"
	xslNumber         = "number"
	xslFallback       = "fallback"
	xslImport         = "import"
	xslInclude        = "include"
	xslStripSpace     = "strip-space"
	xslPreserveSpace  = "preserve-space"
	xslOutput         = "output"
	xslKey            = "key"
	xslDecimalFormat  = "decimal-format"
	xslAttributeSet   = "attribute-set"
	xslNamespaceAlias = "namespace-alias"
)

const (
	funcFunction = "function"
	funcResult   = "result"

	slaxSetVariable    = "set-variable"
	slaxAppendVariable = "append-to-variable"
)

const (
	attrName        = "name"
	attrSelect      = "select"
	attrTest        = "test"
	attrMatch       = "match"
	attrMode        = "mode"
	attrPriority    = "priority"
	attrHref        = "href"
	attrUse         = "use"
	attrElements    = "elements"
	attrMethod      = "method"
	attrVersion     = "version"
	attrTerminate   = "terminate"
	attrDoe         = "disable-output-escaping"
	attrValue       = "value"
	attrExtPrefixes = "extension-element-prefixes"
	attrExcPrefixes = "exclude-result-prefixes"
	attrMvarName    = "mvarname"
	attrSvarName    = "svarname"
	attrMutable     = "mutable"
	attrLang        = "lang"
	attrUseSets     = "use-attribute-sets"
)

const (
	ternaryPrefix = "slax-ternary-"
	ternaryCond   = "-cond"
	ternaryValue  = "slax:value"
	dotPrefix     = "slax-dot-"
	tempInfix     = "-temp-"
	mvarInit      = "slax:mvar-init"
	nodeSetFunc   = "slax-ext:node-set"
	buildSequence = "slax:build-sequence"
)

func xslName(name string) xml.QName {
	return xml.ExpandedName(name, xslPrefix, XslUri)
}

func isXsl(el *xml.Element, names ...string) bool {
	if el == nil || el.Uri != XslUri {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		if el.Name == n {
			return true
		}
	}
	return false
}

func isFunc(el *xml.Element, name string) bool {
	return el != nil && el.Uri == FuncUri && el.Name == name
}

func isSlax(el *xml.Element, name string) bool {
	return el != nil && el.Uri == SlaxUri && el.Name == name
}

func svarName(name string) string {
	return mvar.SvarName(name)
}

// outputAttributes lists the statements allowed in an output-method block
// in the order they are written back.
var outputAttributes = []string{
	kwVersion,
	kwEncoding,
	kwOmitDeclaration,
	kwStandalone,
	kwDoctypePublic,
	kwDoctypeSystem,
	kwCdataElements,
	kwIndent,
	kwMediaType,
}

var sortAttributes = []string{
	kwLanguage,
	kwDataType,
	kwOrder,
	kwCaseOrder,
}

var numberAttributes = []string{
	kwLevel,
	kwCount,
	kwFrom,
	kwFormat,
	kwLanguage,
	kwLetterValue,
	kwGroupSeparator,
	kwGroupSize,
}

// statementAttr gives the attribute set by a statement of a sort, number
// or output-method block.
func statementAttr(word string) string {
	if word == kwLanguage {
		return attrLang
	}
	return word
}

// attrStatement is the reverse of statementAttr.
func attrStatement(name string) string {
	if name == attrLang {
		return kwLanguage
	}
	return name
}
