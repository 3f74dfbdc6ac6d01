package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"transfer/internal/file"
	"transfer/internal/progress"
	"transfer/internal/transfer"
)

func TestBarUI_RendersAndSummarizes(t *testing.T) {
	var out bytes.Buffer
	b := NewBarUI(&out, false)
	b.throttle = 0

	b.FirstCopy("a.bin")
	b.Progress(progress.Compute(512, 1024, time.Second))
	b.Warn(file.NewError("open", "/src/b.bin", os.ErrPermission))
	b.Progress(progress.Compute(1024, 1024, 2*time.Second))
	b.Complete(transfer.Result{Files: 2, Copied: 1, Failed: 1, BytesCopied: 1024, Elapsed: 2 * time.Second})

	got := out.String()
	for _, want := range []string{
		"🔄 Transferring first file not already present: a.bin\n",
		"⚠️ Error transferring '/src/b.bin': permission denied\n",
		"🎉 Transfer Completed Successfully!",
		"+ Files: 2 (copied 1, skipped 0, failed 1)",
		"+ Copied: 1.0 KB, already present: 0 B",
		"+ Transfer time: 2s",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\nfull output: %q", want, got)
		}
	}
	if b.bar != nil {
		t.Errorf("bar should be released after completion")
	}
}

func TestBarUI_CompleteWithoutProgress(t *testing.T) {
	var out bytes.Buffer
	b := NewBarUI(&out, false)

	b.Complete(transfer.Result{Files: 3, Skipped: 3, BytesSkipped: 2048})

	if !strings.Contains(out.String(), "+ Files: 3 (copied 0, skipped 3, failed 0)") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
