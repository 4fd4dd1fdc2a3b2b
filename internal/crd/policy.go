package crd

// Static policy blocks. Values are fixed and do not depend on the selection.

type Behavior struct {
	ResponseFormat struct {
		Type string `yaml:"type"`
	} `yaml:"responseFormat"`
	ToolChoice string `yaml:"toolChoice"`
	Reasoning  struct {
		Enabled            bool `yaml:"enabled"`
		MaxReasoningTokens int  `yaml:"maxReasoningTokens"`
	} `yaml:"reasoning"`
	Determinism struct {
		Seed int `yaml:"seed"`
	} `yaml:"determinism"`
	ContextWindow struct {
		MaxPromptTokens    int    `yaml:"maxPromptTokens"`
		TruncationStrategy string `yaml:"truncationStrategy"`
	} `yaml:"contextWindow"`
}

type RAG struct {
	Ingestion struct {
		Chunker      string `yaml:"chunker"`
		ChunkSize    int    `yaml:"chunkSize"`
		ChunkOverlap int    `yaml:"chunkOverlap"`
		Dedupe       bool   `yaml:"dedupe"`
		Schedule     string `yaml:"schedule"`
	} `yaml:"ingestion"`
	Embedding struct {
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embedding"`
	Index struct {
		Metric string `yaml:"metric"`
		Hybrid bool   `yaml:"hybrid"`
		HNSW   struct {
			M              int `yaml:"m"`
			EfConstruction int `yaml:"efConstruction"`
		} `yaml:"hnsw"`
	} `yaml:"index"`
	Retrieval struct {
		TopK             int  `yaml:"topK"`
		MMR              bool `yaml:"mmr"`
		RecencyBoost     bool `yaml:"recencyBoost"`
		RequireCitations bool `yaml:"requireCitations"`
	} `yaml:"retrieval"`
	Retention struct {
		TTLDays int  `yaml:"ttlDays"`
		Lineage bool `yaml:"lineage"`
	} `yaml:"retention"`
}

type Security struct {
	RBAC struct {
		Roles []string `yaml:"roles"`
	} `yaml:"rbac"`
	DataPolicy struct {
		Classification string `yaml:"classification"`
		RedactPII      bool   `yaml:"redactPII"`
		RetentionDays  int    `yaml:"retentionDays"`
	} `yaml:"dataPolicy"`
	Egress struct {
		Allowlist []string `yaml:"allowlist"`
		MTLS      bool     `yaml:"mtls"`
	} `yaml:"egress"`
}

type Ops struct {
	Timeouts struct {
		DefaultMs int `yaml:"defaultMs"`
	} `yaml:"timeouts"`
	Retries struct {
		Max       int `yaml:"max"`
		BackoffMs int `yaml:"backoffMs"`
	} `yaml:"retries"`
	RateLimit struct {
		RPM int `yaml:"rpm"`
		RPS int `yaml:"rps"`
	} `yaml:"rateLimit"`
	Resources struct {
		CPU    string `yaml:"cpu"`
		Memory string `yaml:"memory"`
	} `yaml:"resources"`
}

type Telemetry struct {
	OpenTelemetry struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"serviceName"`
	} `yaml:"opentelemetry"`
	Logs struct {
		Redaction bool `yaml:"redaction"`
	} `yaml:"logs"`
	Metrics []string `yaml:"metrics"`
}

// DefaultBehavior returns the behavior block every agent starts with.
func DefaultBehavior() Behavior {
	var b Behavior
	b.ResponseFormat.Type = "json"
	b.ToolChoice = "auto"
	b.Reasoning.Enabled = true
	b.Reasoning.MaxReasoningTokens = 4000
	b.Determinism.Seed = 42
	b.ContextWindow.MaxPromptTokens = 100000
	b.ContextWindow.TruncationStrategy = "middle"
	return b
}

// DefaultRAG returns the retrieval policy, used only when knowledge bases
// are selected.
func DefaultRAG() RAG {
	var r RAG
	r.Ingestion.Chunker = "semantic"
	r.Ingestion.ChunkSize = 512
	r.Ingestion.ChunkOverlap = 50
	r.Ingestion.Dedupe = true
	r.Ingestion.Schedule = "0 */6 * * *"
	r.Embedding.Model = "text-embedding-3-large"
	r.Embedding.Dimension = 3072
	r.Index.Metric = "cosine"
	r.Index.Hybrid = true
	r.Index.HNSW.M = 16
	r.Index.HNSW.EfConstruction = 200
	r.Retrieval.TopK = 10
	r.Retrieval.MMR = true
	r.Retrieval.RecencyBoost = true
	r.Retrieval.RequireCitations = true
	r.Retention.TTLDays = 365
	r.Retention.Lineage = true
	return r
}

func DefaultSecurity() Security {
	var s Security
	s.RBAC.Roles = []string{"AgentUser"}
	s.DataPolicy.Classification = "Internal"
	s.DataPolicy.RedactPII = true
	s.DataPolicy.RetentionDays = 365
	s.Egress.Allowlist = []string{"*.enterprise.com"}
	s.Egress.MTLS = true
	return s
}

func DefaultOps() Ops {
	var o Ops
	o.Timeouts.DefaultMs = 30000
	o.Retries.Max = 3
	o.Retries.BackoffMs = 1000
	o.RateLimit.RPM = 600
	o.RateLimit.RPS = 20
	o.Resources.CPU = "2"
	o.Resources.Memory = "4Gi"
	return o
}

func DefaultTelemetry() Telemetry {
	var t Telemetry
	t.OpenTelemetry.Enabled = true
	t.OpenTelemetry.ServiceName = "agent-service"
	t.Logs.Redaction = true
	t.Metrics = []string{"agent_requests_total", "agent_latency", "agent_errors"}
	return t
}
