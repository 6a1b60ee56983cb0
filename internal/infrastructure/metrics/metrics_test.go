package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCommand(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.CommandsTotal.WithLabelValues("login"))
	DefaultMetrics.RecordCommand("login")
	if got := testutil.ToFloat64(DefaultMetrics.CommandsTotal.WithLabelValues("login")); got != before+1 {
		t.Errorf("commands_total{login} = %v, want %v", got, before+1)
	}

	DefaultMetrics.RecordCommand("")
	if got := testutil.ToFloat64(DefaultMetrics.CommandsTotal.WithLabelValues("unknown")); got < 1 {
		t.Errorf("empty command must be counted as unknown")
	}
}

func TestTaskMetrics(t *testing.T) {
	DefaultMetrics.TaskStarted("join")
	DefaultMetrics.ActionCompleted("join", "success")
	DefaultMetrics.FloodWait(5 * time.Second)
	DefaultMetrics.FloodWait(0)
	DefaultMetrics.TaskFinished("join", "completed")
	DefaultMetrics.ActiveTasks(2)

	if got := testutil.ToFloat64(DefaultMetrics.TasksGauge); got != 2 {
		t.Errorf("active_bulk_tasks = %v, want 2", got)
	}
}

func TestAccountsSnapshot(t *testing.T) {
	DefaultMetrics.AccountsSnapshot(10, 7, 1)

	if got := testutil.ToFloat64(DefaultMetrics.ActiveAccounts); got != 7 {
		t.Errorf("accounts_active = %v, want 7", got)
	}
	if got := testutil.ToFloat64(DefaultMetrics.FrozenAccounts); got != 1 {
		t.Errorf("accounts_frozen = %v, want 1", got)
	}
}

func TestDialogAndKafkaMetrics(t *testing.T) {
	DefaultMetrics.DialogStarted("login")
	DefaultMetrics.DialogFinished("login", "completed")
	DefaultMetrics.ActiveDialogs(0)
	DefaultMetrics.RecordKafkaMessage()
	DefaultMetrics.RecordKafkaError("")
	DefaultMetrics.RecordChannelLog("send", false)
	DefaultMetrics.RecordCommandError("send", "validation")
}
