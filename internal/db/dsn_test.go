package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{`  "postgres://u:p@h:5432/pos?sslmode=disable" `, "postgres://u:p@h:5432/pos?sslmode=disable"},
		{"host=h   user=u password=p dbname=pos", "host=h user=u password=p dbname=pos sslmode=disable"},
		{"host=h user=u dbname=pos sslmode=require", "host=h user=u dbname=pos sslmode=require"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := NormalizeDSN(tt.in); got != tt.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=pos password=s3cret dbname=pos sslmode=disable")
	if want := "postgres://pos:s3cret@db:5432/pos?sslmode=disable"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := ToURLDSN("postgres://already"); got != "postgres://already" {
		t.Fatalf("URL input should pass through, got %q", got)
	}
	if got := ToURLDSN("host=db"); got != "host=db" {
		t.Fatalf("incomplete input should pass through, got %q", got)
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=s3cret dbname=pos"); got != "host=h password=*** dbname=pos" {
		t.Fatalf("kv mask: %q", got)
	}
	if got := MaskDSN("postgres://pos:s3cret@db:5432/pos"); got != "postgres://pos:***@db:5432/pos" {
		t.Fatalf("url mask: %q", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := SQLiteDSN("pos.db"); got != "file:pos.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate" {
		t.Fatalf("got %q", got)
	}
	if got := SQLiteDSN("file:x?mode=memory"); got != "file:x?mode=memory" {
		t.Fatalf("explicit params must be kept, got %q", got)
	}
}
