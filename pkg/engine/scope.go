package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// The scopes sfdc-connect can collect. Used to distinguish the wrapped
// collector output shape from a single-scope payload.
var knownScopes = []string{
	"auth",
	"access",
	"event-monitoring",
	"transaction-security",
	"integrations",
	"oauth",
	"secconf",
}

// SOQLResult mirrors a Salesforce query_all response.
type SOQLResult struct {
	TotalSize int      `json:"totalSize"`
	Records   []Record `json:"records"`
}

// Record is one SOQL row. Field access helpers absorb missing keys and the
// float64 numbers encoding/json produces for untyped JSON.
type Record map[string]interface{}

func (r Record) Bool(key string) bool {
	v, _ := r[key].(bool)
	return v
}

func (r Record) Str(key string) string {
	v, _ := r[key].(string)
	return v
}

func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// ScopeSlice is the portion of collected data belonging to one scope:
// a set of named query results.
type ScopeSlice map[string]json.RawMessage

// Result decodes the named query result, returning a zero result when the
// entry is missing or malformed. Missing data is a policy outcome
// (not_applicable), never an error.
func (s ScopeSlice) Result(name string) SOQLResult {
	var res SOQLResult
	raw, ok := s[name]
	if !ok {
		return res
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return SOQLResult{}
	}
	return res
}

// Total returns totalSize of the named query result.
func (s ScopeSlice) Total(name string) int {
	return s.Result(name).TotalSize
}

// Records returns the records of the named query result.
func (s ScopeSlice) Records(name string) []Record {
	return s.Result(name).Records
}

// Meta decodes the named entry as a plain object. Collector scopes record
// API errors as {"error": ..., "note": ...} objects in place of results.
func (s ScopeSlice) Meta(name string) map[string]interface{} {
	raw, ok := s[name]
	if !ok {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// HasKey reports whether the named entry decodes to an object containing key.
func (s ScopeSlice) HasKey(name, key string) bool {
	m := s.Meta(name)
	if m == nil {
		return false
	}
	_, ok := m[key]
	return ok
}

// ScopeData is the collector output resolved into an explicit shape at the
// ingestion boundary. sfdc-connect --scope all wraps each scope under its
// name; a single-scope run emits the scope payload directly. Both shapes are
// accepted; resolution happens once, not per rule.
type ScopeData struct {
	scopes map[string]ScopeSlice
	// direct holds a single-scope payload, which answers any scope lookup.
	direct ScopeSlice
}

// EmptyScopeData is a ScopeData with nothing collected. Every rule degrades
// to not_applicable against it.
func EmptyScopeData() *ScopeData {
	return &ScopeData{}
}

// NewScopeData resolves a raw collector payload into a ScopeData.
func NewScopeData(raw map[string]json.RawMessage) *ScopeData {
	if len(raw) == 0 {
		return EmptyScopeData()
	}

	sd := &ScopeData{scopes: make(map[string]ScopeSlice)}
	for _, name := range knownScopes {
		entry, ok := raw[name]
		if !ok {
			continue
		}
		var slice ScopeSlice
		if err := json.Unmarshal(entry, &slice); err != nil {
			continue
		}
		sd.scopes[name] = slice
	}

	if len(sd.scopes) == 0 {
		// No known scope names at the top level: the payload is a single
		// scope's data and serves any scope lookup.
		var slice ScopeSlice
		if err := json.Unmarshal(rawToJSON(raw), &slice); err == nil {
			sd.direct = slice
		}
	}
	return sd
}

func rawToJSON(raw map[string]json.RawMessage) []byte {
	b, err := json.Marshal(raw)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Scope returns the slice for the named scope, falling back to the direct
// payload for single-scope collector output.
func (d *ScopeData) Scope(name string) (ScopeSlice, bool) {
	if d == nil {
		return nil, false
	}
	if slice, ok := d.scopes[name]; ok {
		return slice, true
	}
	if d.direct != nil {
		return d.direct, true
	}
	return nil, false
}

// CollectorOutput is the sfdc-connect result envelope.
type CollectorOutput struct {
	Org  string
	Env  string
	Data *ScopeData
}

// ParseCollectorOutput accepts either the full collector envelope
// ({org, env, collected_at_utc, raw: {...}}) or a bare raw payload.
func ParseCollectorOutput(data []byte) (*CollectorOutput, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse collector output: %w", err)
	}

	out := &CollectorOutput{Org: "unknown"}
	if orgRaw, ok := top["org"]; ok {
		_ = json.Unmarshal(orgRaw, &out.Org)
	}
	if envRaw, ok := top["env"]; ok {
		_ = json.Unmarshal(envRaw, &out.Env)
	}

	if rawEntry, ok := top["raw"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(rawEntry, &inner); err != nil {
			return nil, fmt.Errorf("parse collector raw payload: %w", err)
		}
		out.Data = NewScopeData(inner)
		return out, nil
	}

	out.Data = NewScopeData(top)
	return out, nil
}

// LoadCollectorOutput reads and parses a collector output file.
func LoadCollectorOutput(path string) (*CollectorOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collector output: %w", err)
	}
	return ParseCollectorOutput(data)
}
