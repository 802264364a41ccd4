package bootstrap_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"legal-lab/bootstrap"
	"legal-lab/mocks"
)

// Launch must hand the spec to the runner untouched; the interactive flag
// and working directory in particular decide how the child's stdio is wired.
func TestOrchestrator_Launch_Forwards_The_Full_Spec(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	orchestrator := bootstrap.NewOrchestrator(slog.Default(), runner)

	spec := bootstrap.ProcessSpec{
		Name:        "chatbot",
		Bin:         "chatbot",
		Args:        []string{"--once"},
		Dir:         "/srv/legal",
		Interactive: true,
	}

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(4242).AnyTimes()

	gomock.InOrder(
		runner.EXPECT().LookPath("chatbot").Return("/usr/local/bin/chatbot", nil),
		runner.EXPECT().Start(gomock.Any(), spec).Return(proc, nil),
	)

	launched, err := orchestrator.Launch(context.Background(), spec)
	req.NoError(err)
	req.Equal(4242, launched.PID())
}

func TestOrchestrator_Run_Checks_Installs_And_Launches_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockRunner(ctrl)
	orchestrator := bootstrap.NewOrchestrator(slog.Default(), runner)

	plan := bootstrap.Plan{
		RuntimeBin:        "python3",
		PackageManagerBin: "pip3",
		ManifestPath:      "requirements.txt",
		Processes: []bootstrap.ProcessSpec{
			{Name: "toolserver", Bin: "toolserver"},
		},
	}

	proc := mocks.NewMockProcess(ctrl)
	proc.EXPECT().PID().Return(900).AnyTimes()

	gomock.InOrder(
		runner.EXPECT().LookPath("python3").Return("/usr/bin/python3", nil),
		runner.EXPECT().LookPath("pip3").Return("/usr/bin/pip3", nil),
		runner.EXPECT().Run(gomock.Any(), "pip3", "install", "-r", "requirements.txt").Return(nil),
		runner.EXPECT().LookPath("toolserver").Return("/usr/local/bin/toolserver", nil),
		runner.EXPECT().Start(gomock.Any(), plan.Processes[0]).Return(proc, nil),
	)

	children, err := orchestrator.Run(context.Background(), plan)
	req.NoError(err)
	req.Len(children, 1)
	req.Equal(900, children[0].Process.PID())
}
