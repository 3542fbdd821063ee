package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func Test_normalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    []string
		wantErr bool
	}{
		{
			"adds parseTime",
			"root:@tcp(127.0.0.1:3306)/catmap",
			[]string{"parseTime=true", "/catmap"},
			false,
		},
		{
			"keeps charset",
			"root:pw@tcp(db:3306)/catmap?charset=utf8mb4&parseTime=false",
			[]string{"parseTime=true", "charset=utf8mb4"},
			false,
		},
		{
			"invalid",
			"root:@tcp(127.0.0.1:3306",
			nil,
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeMySQLDSN(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeMySQLDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("normalizeMySQLDSN() = %s, missing %s", got, w)
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Error("Open() without any database should fail")
	}
	db, err := Open(Options{SQLiteFile: filepath.Join(t.TempDir(), "test.db")})
	if err != nil || db == nil {
		t.Fatalf("Open() sqlite error = %v", err)
	}
}
