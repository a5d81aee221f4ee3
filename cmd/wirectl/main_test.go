package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/ensiwire/internal/testutil/testlog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestEncodeVarUint(t *testing.T) {
	testlog.Start(t)
	got, err := run(t, "encode", "--type", "varuint", "10795")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "fd2a2b" {
		t.Fatalf("encode varuint 10795 = %q, want fd2a2b", got)
	}
}

func TestEncodeSequence(t *testing.T) {
	testlog.Start(t)
	got, err := run(t, "encode", "-t", "seq<seq<u8>>", "[[42,43],[44]]")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "02022a2b012c" {
		t.Fatalf("encode nested sequence = %q", got)
	}
}

func TestDecodeScenarios(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "varuint", args: []string{"decode", "-t", "varuint", "fd2a2b"}, want: "10795"},
		{name: "u16", args: []string{"decode", "-t", "u16", "0x0a0f"}, want: "2575"},
		{name: "string", args: []string{"decode", "-t", "string", "03616263"}, want: `"abc"`},
		{name: "split hex", args: []string{"decode", "-t", "seq<seq<u8>>", "0202", "2a2b", "012c"}, want: "[[42,43],[44]]"},
		{name: "partial", args: []string{"decode", "-t", "u8", "--partial", "7dff"}, want: "125"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := run(t, tc.args...)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("decode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := run(t, "decode", "-t", "u32", "0102"); err == nil ||
		!strings.Contains(err.Error(), "expected 4 got 2") {
		t.Fatalf("short u32 err = %v", err)
	}
	if _, err := run(t, "decode", "-t", "u8", "7dff"); err == nil {
		t.Fatalf("expected trailing byte error without --partial")
	}
	if _, err := run(t, "decode", "-t", "seq<", "00"); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, err := run(t, "decode", "-t", "u8", "zz"); err == nil {
		t.Fatalf("expected hex error")
	}
}

func TestFrameEncodeDecode(t *testing.T) {
	testlog.Start(t)
	framed, err := run(t, "frame", "encode", "--name", "ping", "03616263")
	if err != nil {
		t.Fatalf("frame encode: %v", err)
	}
	if len(framed) != 2*(24+4) {
		t.Fatalf("frame encode len = %d, want %d", len(framed), 2*(24+4))
	}
	got, err := run(t, "frame", "decode", "-t", "string", framed)
	if err != nil {
		t.Fatalf("frame decode: %v", err)
	}
	for _, want := range []string{`"magic":422021`, `"type":"ping"`, `"payload_len":4`, `"payload":"abc"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("frame decode output %s missing %s", got, want)
		}
	}
}

func TestFrameEncodeRejectsLongType(t *testing.T) {
	testlog.Start(t)
	if _, err := run(t, "frame", "encode", "--name", "averyverylongtype", "00"); err == nil {
		t.Fatalf("expected invalid type error")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "wirectl.toml")
	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := run(t, "config", "init", path); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if _, err := run(t, "config", "init", "--force", path); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	if _, err := run(t, "config", "validate", path); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if _, err := run(t, "--config", path, "version"); err != nil {
		t.Fatalf("version with config: %v", err)
	}
}

func TestRejectsUnknownLogLevel(t *testing.T) {
	testlog.Start(t)
	if _, err := run(t, "--log-level", "loud", "version"); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestGenWritesOutput(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "msg.go")
	body := `package msg

import "github.com/danmuck/ensiwire/internal/protocol/wire"

//wire:record
type Ping struct {
	Nonce uint64
	Peer  wire.Address
}
`
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if _, err := run(t, "gen", "--input", src); err != nil {
		t.Fatalf("gen: %v", err)
	}
	out, err := os.ReadFile(filepath.Join(dir, "msg_wire.go"))
	if err != nil {
		t.Fatalf("read generated: %v", err)
	}
	for _, want := range []string{"DO NOT EDIT", "func (m Ping) EncodeTo(w *wire.Writer)", "func (m *Ping) DecodeFrom(r *wire.Reader) error"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("generated output missing %q:\n%s", want, out)
		}
	}
}

func TestFrameDecodeUsesConfiguredPayloads(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "wirectl.toml")
	body := "[payloads]\nping = \"u64\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	framed, err := run(t, "frame", "encode", "--name", "ping", "000000000000002a")
	if err != nil {
		t.Fatalf("frame encode: %v", err)
	}
	got, err := run(t, "--config", path, "frame", "decode", framed)
	if err != nil {
		t.Fatalf("frame decode: %v", err)
	}
	if !strings.Contains(got, `"payload":42`) {
		t.Fatalf("frame decode output %s missing decoded payload", got)
	}
	got, err = run(t, "frame", "decode", framed)
	if err != nil {
		t.Fatalf("frame decode: %v", err)
	}
	if !strings.Contains(got, `"payload":"000000000000002a"`) {
		t.Fatalf("frame decode output %s should keep hex payload", got)
	}
}
