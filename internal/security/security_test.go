package security

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIKeyManager_GenerateAndValidate(t *testing.T) {
	m := NewAPIKeyManager()

	key, err := m.GenerateKey("org-1", "测试密钥", []string{"plan:generate"}, nil)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if !strings.HasPrefix(key.Key, "pk_") {
		t.Errorf("密钥应以 pk_ 开头, got %s", key.Key)
	}
	if key.OrgID != "org-1" || !key.Enabled {
		t.Errorf("密钥属性不符: %+v", key)
	}

	validated, err := m.Validate(key.Key)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if validated.Name != "测试密钥" {
		t.Errorf("Name = %s, expected 测试密钥", validated.Name)
	}
}

func TestAPIKeyManager_ValidateUnknownKey(t *testing.T) {
	m := NewAPIKeyManager()

	if _, err := m.Validate("pk_不存在"); err != ErrInvalidAPIKey {
		t.Errorf("error = %v, expected ErrInvalidAPIKey", err)
	}
}

func TestAPIKeyManager_ExpiredKey(t *testing.T) {
	m := NewAPIKeyManager()

	expiresIn := -time.Hour // 已过期
	key, err := m.GenerateKey("org-1", "过期密钥", nil, &expiresIn)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	if _, err := m.Validate(key.Key); err != ErrExpiredAPIKey {
		t.Errorf("error = %v, expected ErrExpiredAPIKey", err)
	}
}

func TestAPIKeyManager_Revoke(t *testing.T) {
	m := NewAPIKeyManager()

	key, _ := m.GenerateKey("org-1", "待撤销", nil, nil)
	m.Revoke(key.Key)

	if _, err := m.Validate(key.Key); err != ErrExpiredAPIKey {
		t.Errorf("撤销后 error = %v, expected ErrExpiredAPIKey", err)
	}
}

func TestAPIKeyManager_Delete(t *testing.T) {
	m := NewAPIKeyManager()

	key, _ := m.GenerateKey("org-1", "待删除", nil, nil)
	m.Delete(key.Key)

	if _, err := m.Validate(key.Key); err != ErrInvalidAPIKey {
		t.Errorf("删除后 error = %v, expected ErrInvalidAPIKey", err)
	}
}

func TestAPIKey_HasScope(t *testing.T) {
	tests := []struct {
		name     string
		scopes   []string
		check    string
		expected bool
	}{
		{name: "精确匹配", scopes: []string{"plan:generate", "plan:read"}, check: "plan:read", expected: true},
		{name: "通配符", scopes: []string{"*"}, check: "config:write", expected: true},
		{name: "无权限", scopes: []string{"plan:read"}, check: "plan:generate", expected: false},
		{name: "空权限", scopes: nil, check: "plan:read", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := &APIKey{Scopes: tt.scopes}
			if got := key.HasScope(tt.check); got != tt.expected {
				t.Errorf("HasScope(%s) = %v, expected %v", tt.check, got, tt.expected)
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("org-1") {
			t.Fatalf("第 %d 次请求应被允许", i+1)
		}
	}
	if rl.Allow("org-1") {
		t.Error("超过限额的请求应被拒绝")
	}

	// 不同的 key 互不影响
	if !rl.Allow("org-2") {
		t.Error("其他组织的请求不应受影响")
	}
}

func TestSignatureVerifier(t *testing.T) {
	v := NewSignatureVerifier("密钥123")
	payload := `{"week":{"year":2025,"week":10}}`
	timestamp := time.Now().Unix()

	sig := v.GenerateSignature(payload, timestamp)

	if !v.Verify(payload, sig, timestamp, 5*time.Minute) {
		t.Error("正确的签名应通过验证")
	}
	if v.Verify(payload+"篡改", sig, timestamp, 5*time.Minute) {
		t.Error("篡改的载荷不应通过验证")
	}
	if v.Verify(payload, sig, timestamp-600, 5*time.Minute) {
		t.Error("过期的时间戳不应通过验证")
	}
}

func TestExtractAPIKey(t *testing.T) {
	t.Run("Bearer头", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/plan", nil)
		r.Header.Set("Authorization", "Bearer pk_abc")
		if got := ExtractAPIKey(r); got != "pk_abc" {
			t.Errorf("ExtractAPIKey() = %s, expected pk_abc", got)
		}
	})

	t.Run("X-API-Key头", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/plan", nil)
		r.Header.Set("X-API-Key", "pk_def")
		if got := ExtractAPIKey(r); got != "pk_def" {
			t.Errorf("ExtractAPIKey() = %s, expected pk_def", got)
		}
	})

	t.Run("查询参数", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/plan?api_key=pk_ghi", nil)
		if got := ExtractAPIKey(r); got != "pk_ghi" {
			t.Errorf("ExtractAPIKey() = %s, expected pk_ghi", got)
		}
	})

	t.Run("无密钥", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/plan", nil)
		if got := ExtractAPIKey(r); got != "" {
			t.Errorf("ExtractAPIKey() = %s, expected empty", got)
		}
	})
}
