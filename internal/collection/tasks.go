package collection

import "github.com/tyemirov/colx/internal/taskrunner"

// Task names preserved from the collection's original build targets.
const (
	TaskNameClean   = "clean"
	TaskNameBuild   = "build"
	TaskNameInstall = "install"
	TaskNamePublish = "publish"
	TaskNameAll     = "all"
)

// Tasks returns the static packaging task table. The registry built from it
// never changes during execution; a requested task always runs regardless of
// archive timestamps, unlike file-based build tools. The publish task is
// declared without being part of the aggregate and only runs when requested.
func Tasks(service *Service) []taskrunner.Task {
	return []taskrunner.Task{
		{Name: TaskNameClean, Action: taskrunner.ActionFunc(service.Clean)},
		{Name: TaskNameBuild, Action: taskrunner.ActionFunc(service.Build)},
		{Name: TaskNameInstall, Action: taskrunner.ActionFunc(service.Install)},
		{Name: TaskNamePublish, Action: taskrunner.ActionFunc(service.Publish)},
		{Name: TaskNameAll, Prerequisites: []string{TaskNameClean, TaskNameBuild, TaskNameInstall}},
	}
}
