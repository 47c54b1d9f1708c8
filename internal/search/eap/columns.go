package eap

import (
	"fmt"
	"strconv"

	"github.com/emberwatch/emberwatch/internal/utils"
)

// Processor transforms a raw result value into its final public form
// during post-processing.
type Processor func(value any) (any, error)

// Validator checks whether a query value is acceptable for a column.
type Validator func(value string) bool

// InvalidSearchQueryError is returned when a query references an unknown
// column or passes a value the column rejects.
type InvalidSearchQueryError struct {
	Message string
}

func (e *InvalidSearchQueryError) Error() string { return e.Message }

func invalidSearchQueryf(format string, args ...any) error {
	return &InvalidSearchQueryError{Message: fmt.Sprintf(format, args...)}
}

// ResolvedColumn maps a public search alias onto its storage-side
// attribute in the trace-item store.
type ResolvedColumn struct {
	// PublicAlias is the name exposed to search queries.
	PublicAlias string
	// InternalName is the storage column or attribute bucket entry.
	InternalName string
	// SearchType is the public type for this column.
	SearchType SearchType
	// InternalType overrides the storage type when it cannot be inferred
	// from SearchType.
	InternalType AttributeType
	// Processor transforms a result row value in the post-process step.
	Processor Processor
	// Validator rejects malformed query values before they reach the store.
	Validator Validator
}

// Validate checks value against the column's validator, if any.
func (c *ResolvedColumn) Validate(value string) error {
	if c.Validator != nil && !c.Validator(value) {
		return invalidSearchQueryf("%s is an invalid value for %s", value, c.PublicAlias)
	}
	return nil
}

// AttributeKey is the definition of the column as the trace-item RPC needs it.
type AttributeKey struct {
	Name string
	Type AttributeType
}

// AttributeKey returns the storage-side definition of the column.
func (c *ResolvedColumn) AttributeKey() AttributeKey {
	typ := c.InternalType
	if typ == TypeUnspecified {
		typ = typeMap[c.SearchType]
	}
	return AttributeKey{Name: c.InternalName, Type: typ}
}

// SpanColumnDefinitions maps public aliases onto span storage columns.
// Plain attributes live in the attr_str/attr_num buckets; everything else
// is a first-class column of the span table.
var SpanColumnDefinitions = byAlias([]ResolvedColumn{
	{
		PublicAlias:  "id",
		InternalName: "span_id",
		SearchType:   SearchTypeString,
		Validator:    utils.IsSpanID,
	},
	{
		PublicAlias:  "organization.id",
		InternalName: "organization_id",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.action",
		InternalName: "action",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.description",
		InternalName: "name",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "description",
		InternalName: "name",
		SearchType:   SearchTypeString,
	},
	// Message maps to description, this is to allow wildcard searching
	{
		PublicAlias:  "message",
		InternalName: "name",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.domain",
		InternalName: "attr_str[domain]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.group",
		InternalName: "attr_str[group]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.op",
		InternalName: "attr_str[op]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.category",
		InternalName: "attr_str[category]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.self_time",
		InternalName: "exclusive_time_ms",
		SearchType:   SearchTypeDuration,
	},
	{
		PublicAlias:  "span.status",
		InternalName: "attr_str[status]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "trace",
		InternalName: "trace_id",
		SearchType:   SearchTypeString,
		Validator:    utils.IsEventID,
	},
	{
		PublicAlias:  "messaging.destination.name",
		InternalName: "attr_str[messaging.destination.name]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "messaging.message.id",
		InternalName: "attr_str[messaging.message.id]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.status_code",
		InternalName: "attr_str[status_code]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "replay.id",
		InternalName: "attr_str[replay_id]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "span.ai.pipeline.group",
		InternalName: "attr_str[ai_pipeline_group]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "trace.status",
		InternalName: "attr_str[trace.status]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "browser.name",
		InternalName: "attr_str[browser.name]",
		SearchType:   SearchTypeString,
	},
	{
		PublicAlias:  "ai.total_cost",
		InternalName: "attr_num[ai.total_cost]",
		SearchType:   SearchTypeNumber,
	},
	{
		PublicAlias:  "ai.total_tokens.used",
		InternalName: "attr_num[ai_total_tokens_used]",
		SearchType:   SearchTypeNumber,
	},
	{
		PublicAlias:  "project",
		InternalName: "project_id",
		SearchType:   SearchTypeString,
		InternalType: TypeInt,
	},
	{
		PublicAlias:  "project.slug",
		InternalName: "project_id",
		SearchType:   SearchTypeString,
		InternalType: TypeInt,
	},
})

func byAlias(columns []ResolvedColumn) map[string]ResolvedColumn {
	m := make(map[string]ResolvedColumn, len(columns))
	for _, column := range columns {
		m[column.PublicAlias] = column
	}
	return m
}

// ResolveSpanColumn looks up a public alias in the span table.
func ResolveSpanColumn(alias string) (*ResolvedColumn, error) {
	column, ok := SpanColumnDefinitions[alias]
	if !ok {
		return nil, invalidSearchQueryf("%s is not a valid search column", alias)
	}
	return &column, nil
}

// QueryParams carries the per-query state virtual columns need, notably the
// project id to slug mapping of the projects in scope. The trace store
// keys projects by integer id.
type QueryParams struct {
	ProjectSlugs map[int64]string
}

// VirtualColumnContext instructs the trace store to substitute values of
// one column with mapped values under another name.
type VirtualColumnContext struct {
	FromColumnName string
	ToColumnName   string
	ValueMap       map[string]string
}

// ContextConstructor builds a virtual column context from query parameters.
type ContextConstructor func(params *QueryParams) VirtualColumnContext

func projectContextConstructor(columnName string) ContextConstructor {
	return func(params *QueryParams) VirtualColumnContext {
		valueMap := make(map[string]string, len(params.ProjectSlugs))
		for projectID, slug := range params.ProjectSlugs {
			valueMap[strconv.FormatInt(projectID, 10)] = slug
		}
		return VirtualColumnContext{
			FromColumnName: "project_id",
			ToColumnName:   columnName,
			ValueMap:       valueMap,
		}
	}
}

// VirtualContexts lists the aliases that resolve through value mapping
// rather than a stored column.
var VirtualContexts = map[string]ContextConstructor{
	"project":      projectContextConstructor("project"),
	"project.slug": projectContextConstructor("project.slug"),
}

// Processors for the post-process step, keyed by public alias. None of the
// span columns need one yet.
var Processors = map[string]Processor{}
