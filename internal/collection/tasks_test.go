package collection_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/colx/internal/collection"
	"github.com/tyemirov/colx/internal/taskrunner"
)

func TestTasksBuildValidRegistry(testInstance *testing.T) {
	_, configuration := newArchiveWorkspace(testInstance)
	service, serviceError := collection.NewService(zap.NewNop(), &recordingPackagerExecutor{}, configuration)
	require.NoError(testInstance, serviceError)

	registry, registryError := taskrunner.NewRegistry(collection.Tasks(service))
	require.NoError(testInstance, registryError)
	require.Equal(testInstance, []string{
		collection.TaskNameClean,
		collection.TaskNameBuild,
		collection.TaskNameInstall,
		collection.TaskNamePublish,
		collection.TaskNameAll,
	}, registry.TaskNames())
}

func TestAllTaskAggregatesWithoutPublish(testInstance *testing.T) {
	_, configuration := newArchiveWorkspace(testInstance)
	service, serviceError := collection.NewService(zap.NewNop(), &recordingPackagerExecutor{}, configuration)
	require.NoError(testInstance, serviceError)

	registry, registryError := taskrunner.NewRegistry(collection.Tasks(service))
	require.NoError(testInstance, registryError)

	aggregateTask, aggregateExists := registry.Lookup(collection.TaskNameAll)
	require.True(testInstance, aggregateExists)
	require.Nil(testInstance, aggregateTask.Action)
	require.Equal(testInstance, []string{
		collection.TaskNameClean,
		collection.TaskNameBuild,
		collection.TaskNameInstall,
	}, aggregateTask.Prerequisites)
	require.NotContains(testInstance, aggregateTask.Prerequisites, collection.TaskNamePublish)

	executionPlan, planError := registry.Plan(collection.TaskNameAll)
	require.NoError(testInstance, planError)
	require.Equal(testInstance, []string{
		collection.TaskNameClean,
		collection.TaskNameBuild,
		collection.TaskNameInstall,
		collection.TaskNameAll,
	}, executionPlan.TaskNames())
}
