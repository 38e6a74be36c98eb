package errors

// Canvas rule sentinels.
var (
	ErrNodeNotFound = NewDomainError(DomainNotFoundError,
		"NODE_NOT_FOUND", "The requested node does not exist")

	ErrEdgeNotFound = NewDomainError(DomainNotFoundError,
		"EDGE_NOT_FOUND", "The requested edge does not exist")

	ErrSelfReferentialEdge = NewDomainError(DomainBusinessRuleError,
		"SELF_REFERENTIAL_EDGE", "Cannot connect a node to itself")

	ErrDanglingEdge = NewDomainError(DomainValidationError,
		"DANGLING_EDGE", "Edge references a node that does not exist")

	ErrDuplicateNodeID = NewDomainError(DomainValidationError,
		"DUPLICATE_NODE_ID", "Node id appears more than once in the same graph")

	ErrEmptySelection = NewDomainError(DomainBusinessRuleError,
		"EMPTY_SELECTION", "Select at least one node to expand")

	ErrPromptRequired = NewDomainError(DomainValidationError,
		"PROMPT_REQUIRED", "A non-empty prompt is required")

	ErrUnsupportedSchemaVersion = NewDomainError(DomainBusinessRuleError,
		"UNSUPPORTED_SCHEMA_VERSION", "Document schema version is newer than this build supports")

	ErrInvalidDocument = NewDomainError(DomainValidationError,
		"INVALID_DOCUMENT", "Document is not a valid canvas file")
)
