package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// installStub puts a fake ollama binary at the front of PATH. The stub
// knows one downloaded model, "llama3", and two broken run modes.
func installStub(t *testing.T) {
	t.Helper()
	script := `#!/bin/sh
case "$1" in
show)
	if [ "$2" = "llama3" ]; then
		exit 0
	fi
	echo "model '$2' not found" >&2
	exit 1
	;;
pull)
	echo "pulled $2"
	;;
run)
	model="$2"
	shift 2
	if [ "$model" = "broken" ]; then
		echo "model runner error" >&2
		exit 1
	fi
	if [ "$model" = "silent" ]; then
		exit 1
	fi
	echo "reply to: $*"
	;;
esac
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ollama"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", dir)
}

func TestOllamaNotInstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	o := NewOllama()
	ctx := context.Background()

	if err := o.Available(ctx); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Available() error = %v, want ErrNotInstalled", err)
	}
	if _, err := o.Generate(ctx, "llama3", "hi"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Generate() error = %v, want ErrNotInstalled", err)
	}
	if _, err := o.Downloaded(ctx, "llama3"); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Downloaded() error = %v, want ErrNotInstalled", err)
	}
	if st := o.Status(ctx, "llama3"); st.Installed || st.Downloaded {
		t.Errorf("Status() = %+v, want not installed", st)
	}
}

func TestOllamaDownloaded(t *testing.T) {
	installStub(t)
	o := NewOllama()
	ctx := context.Background()

	downloaded, err := o.Downloaded(ctx, "llama3")
	if err != nil {
		t.Fatalf("Downloaded(llama3) error = %v", err)
	}
	if !downloaded {
		t.Error("Downloaded(llama3) = false, want true")
	}

	downloaded, err = o.Downloaded(ctx, "mistral")
	if err != nil {
		t.Fatalf("Downloaded(mistral) error = %v", err)
	}
	if downloaded {
		t.Error("Downloaded(mistral) = true, want false")
	}
}

func TestOllamaGenerate(t *testing.T) {
	installStub(t)
	o := NewOllama()

	out, err := o.Generate(context.Background(), "llama3", "hello world")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "reply to: hello world\n" {
		t.Errorf("Generate() = %q, want %q", out, "reply to: hello world\n")
	}
}

func TestOllamaGenerateErrors(t *testing.T) {
	installStub(t)
	o := NewOllama()
	ctx := context.Background()

	_, err := o.Generate(ctx, "broken", "hi")
	if err == nil || err.Error() != "model runner error" {
		t.Errorf("Generate(broken) error = %v, want stderr text", err)
	}

	_, err = o.Generate(ctx, "silent", "hi")
	if err == nil || err.Error() != "ollama run failed with unknown error" {
		t.Errorf("Generate(silent) error = %v, want generic message", err)
	}
}

func TestOllamaPull(t *testing.T) {
	installStub(t)
	o := NewOllama()

	out, err := o.Pull(context.Background(), "llama3")
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if out != "pulled llama3\n" {
		t.Errorf("Pull() = %q, want %q", out, "pulled llama3\n")
	}
}

func TestOllamaCustomBinary(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"custom reply\"\n"
	if err := os.WriteFile(filepath.Join(dir, "ollama-nightly"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", dir)

	o := NewOllama(WithBinary("ollama-nightly"))
	if err := o.Available(context.Background()); err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	out, err := o.Generate(context.Background(), "m", "p")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "custom reply\n" {
		t.Errorf("Generate() = %q", out)
	}

	if err := NewOllama().Available(context.Background()); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("default binary Available() error = %v, want ErrNotInstalled", err)
	}
}

func TestOllamaStatus(t *testing.T) {
	installStub(t)
	o := NewOllama()
	ctx := context.Background()

	st := o.Status(ctx, "llama3")
	want := Status{Installed: true, Model: "llama3", Downloaded: true}
	if st != want {
		t.Errorf("Status(llama3) = %+v, want %+v", st, want)
	}

	st = o.Status(ctx, "mistral")
	want = Status{Installed: true, Model: "mistral", Downloaded: false}
	if st != want {
		t.Errorf("Status(mistral) = %+v, want %+v", st, want)
	}
}
