package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleAuth001(t *testing.T) {
	tests := []struct {
		name      string
		providers []Record
		want      Status
	}{
		{"no providers", nil, StatusFail},
		{"configured but disabled", []Record{{"IsEnabled": false}}, StatusPartial},
		{"enabled provider", []Record{{"IsEnabled": true}, {"IsEnabled": false}}, StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := makeScope(t, map[string]interface{}{
				"auth": map[string]interface{}{"sso_providers": soql(tt.providers...)},
			})
			f := ruleAuth001(scope)
			require.Equal(t, tt.want, f.Status)
			require.Equal(t, SeverityCritical, f.Severity)
		})
	}
}

func TestRuleAuth001MissingScope(t *testing.T) {
	f := ruleAuth001(makeScope(t, map[string]interface{}{
		"oauth": map[string]interface{}{},
	}))
	require.Equal(t, StatusNotApplicable, f.Status)
	require.Equal(t, "Scope not collected by sfdc-connect", f.ObservedValue)
}

func TestRuleAuth003Thresholds(t *testing.T) {
	for _, tt := range []struct {
		ranges int
		want   Status
	}{
		{0, StatusFail},
		{2, StatusPartial},
		{3, StatusPass},
	} {
		scope := makeScope(t, map[string]interface{}{
			"auth": map[string]interface{}{
				"login_ip_ranges": map[string]interface{}{"totalSize": tt.ranges, "records": []Record{}},
			},
		})
		require.Equal(t, tt.want, ruleAuth003(scope).Status, "ranges=%d", tt.ranges)
	}
}

func TestRuleAcs001AdminProfileThresholds(t *testing.T) {
	for _, tt := range []struct {
		profiles int
		want     Status
	}{
		{2, StatusPass},
		{4, StatusPartial},
		{8, StatusFail},
	} {
		scope := makeScope(t, map[string]interface{}{
			"access": map[string]interface{}{
				"admin_profiles": map[string]interface{}{"totalSize": tt.profiles, "records": []Record{}},
			},
		})
		require.Equal(t, tt.want, ruleAcs001(scope).Status, "profiles=%d", tt.profiles)
	}
}

func TestRuleAcs003ConnectedApps(t *testing.T) {
	restricted := Record{"OptionsAllowAdminApprovedUsersOnly": true}
	open := Record{"OptionsAllowAdminApprovedUsersOnly": false}

	for _, tt := range []struct {
		name string
		apps []Record
		want Status
	}{
		{"no apps", nil, StatusPass},
		{"all open", []Record{open, open}, StatusFail},
		{"mixed", []Record{restricted, open}, StatusPartial},
		{"all restricted", []Record{restricted}, StatusPass},
	} {
		t.Run(tt.name, func(t *testing.T) {
			scope := makeScope(t, map[string]interface{}{
				"access": map[string]interface{}{"connected_apps": soql(tt.apps...)},
			})
			require.Equal(t, tt.want, ruleAcs003(scope).Status)
		})
	}
}

func TestRuleInt004APIEventTypes(t *testing.T) {
	scope := makeScope(t, map[string]interface{}{
		"event-monitoring": map[string]interface{}{
			"event_log_types": soql(
				Record{"EventType": "Login"},
				Record{"EventType": "ApiTotalUsage"},
				Record{"EventType": "RestApi"},
			),
		},
	})
	f := ruleInt004(scope)
	require.Equal(t, StatusPass, f.Status)
	require.Contains(t, f.ObservedValue, "ApiTotalUsage, RestApi")

	noAPI := makeScope(t, map[string]interface{}{
		"event-monitoring": map[string]interface{}{
			"event_log_types": soql(Record{"EventType": "Login"}),
		},
	})
	require.Equal(t, StatusPartial, ruleInt004(noAPI).Status)

	empty := makeScope(t, map[string]interface{}{
		"event-monitoring": map[string]interface{}{"event_log_types": soql()},
	})
	require.Equal(t, StatusFail, ruleInt004(empty).Status)
}

func TestRuleSecconf001HealthCheck(t *testing.T) {
	scoped := func(entry interface{}) *ScopeData {
		return makeScope(t, map[string]interface{}{
			"secconf": map[string]interface{}{"health_check": entry},
		})
	}

	// Tooling API unavailable: the collector records a note object.
	f := ruleSecconf001(scoped(map[string]interface{}{"note": "not queryable"}))
	require.Equal(t, StatusPartial, f.Status)
	require.Contains(t, f.ObservedValue, "manually")

	for _, tt := range []struct {
		score int
		want  Status
	}{
		{40, StatusFail},
		{64, StatusPartial},
		{85, StatusPass},
	} {
		f := ruleSecconf001(scoped(soql(Record{"Score": tt.score})))
		require.Equal(t, tt.want, f.Status, "score=%d", tt.score)
	}
}

func TestRuleDataStructuralIgnoresScope(t *testing.T) {
	rule := ruleDataStructural("SBS-DATA-001", SeverityHigh)
	require.Equal(t, StatusPartial, rule(EmptyScopeData()).Status)
	require.Equal(t, StatusPartial, rule(makeScope(t, map[string]interface{}{
		"event-monitoring": map[string]interface{}{},
	})).Status)
}

func TestRuleDep003TransactionSecurity(t *testing.T) {
	for _, tt := range []struct {
		name     string
		policies []Record
		want     Status
	}{
		{"none", nil, StatusFail},
		{"disabled only", []Record{{"IsEnabled": false}}, StatusPartial},
		{"enabled", []Record{{"IsEnabled": true}}, StatusPass},
	} {
		t.Run(tt.name, func(t *testing.T) {
			scope := makeScope(t, map[string]interface{}{
				"transaction-security": map[string]interface{}{"policies": soql(tt.policies...)},
			})
			require.Equal(t, tt.want, ruleDep003(scope).Status)
		})
	}
}

func TestRegistryCoversDryRunOverrides(t *testing.T) {
	for id := range dryRunOverrides {
		if _, ok := Rules[id]; !ok {
			t.Errorf("dry-run override %s has no registered rule", id)
		}
	}
}
