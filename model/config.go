package model

const AppName = "jobs-emailer"

// Label surface shared with the jobs framework. Pods that don't carry
// these labels are not ours to report on.
const (
	LabelToolforge = "toolforge"
	LabelCreatedBy = "app.kubernetes.io/created-by"
	LabelJobName   = "app.kubernetes.io/name"
	LabelComponent = "app.kubernetes.io/component"
	LabelManagedBy = "app.kubernetes.io/managed-by"
	LabelEmails    = "jobs.toolforge.org/emails"

	ToolforgeToolValue = "tool"
	JobsFrameworkValue = "toolforge-jobs-framework"

	ToolNamespacePrefix = "tool-"
)

// Job framework component values, one per job flavor.
const (
	ComponentJobs        = "jobs"
	ComponentCronjobs    = "cronjobs"
	ComponentDeployments = "deployments"
)

type Config struct {
	ListenAddr         string `env:"EMAILER_LISTEN_ADDR" envDefault:":8080"`
	ConfigMapName      string `env:"EMAILER_CONFIGMAP_NAME" envDefault:"jobs-emailer-configmap"`
	ConfigMapNamespace string `env:"EMAILER_CONFIGMAP_NAMESPACE" envDefault:"jobs-emailer"`
	Kubeconfig         string `env:"EMAILER_KUBECONFIG"`
}
