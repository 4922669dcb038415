package security

// Rule identifiers carried in SecurityFinding.Rule.
const (
	RuleEval             = "eval"
	RuleExec             = "exec"
	RuleSubprocessShell  = "subprocess_shell"
	RuleYAMLLoad         = "yaml_load"
	RulePickleLoad       = "pickle_load"
	RuleNewFunction      = "new_function"
	RuleChildProcessExec = "child_process_exec"
)

type rule struct {
	message string
	hint    string
}

var rules = map[string]rule{
	RuleEval: {
		message: "Use of eval is dangerous",
		hint:    "Avoid eval/exec; parse inputs or use safe alternatives.",
	},
	RuleExec: {
		message: "Use of exec is dangerous",
		hint:    "Avoid eval/exec; parse inputs or use safe alternatives.",
	},
	RuleSubprocessShell: {
		message: "subprocess with shell=True can lead to command injection",
		hint:    "Pass shell=False and provide args list; sanitize inputs.",
	},
	RuleYAMLLoad: {
		message: "yaml.load without SafeLoader is unsafe",
		hint:    "Use yaml.safe_load or specify SafeLoader.",
	},
	RulePickleLoad: {
		message: "pickle deserialization of untrusted data can execute code",
		hint:    "Only unpickle trusted data; prefer json for interchange.",
	},
	RuleNewFunction: {
		message: "Use of new Function detected",
		hint:    "Avoid dynamic code execution.",
	},
	RuleChildProcessExec: {
		message: "child_process.exec detected; risk of command injection",
		hint:    "Prefer execFile/spawn with args; sanitize inputs.",
	},
}

// Script eval has its own wording.
var scriptEval = rule{
	message: "Use of eval detected",
	hint:    "Avoid eval; use JSON.parse or safer parsing.",
}

var subprocessShellCalls = map[string]bool{
	"subprocess.Popen":        true,
	"subprocess.call":         true,
	"subprocess.run":          true,
	"subprocess.check_call":   true,
	"subprocess.check_output": true,
}

var pickleLoads = map[string]bool{
	"pickle.load":   true,
	"pickle.loads":  true,
	"cPickle.load":  true,
	"cPickle.loads": true,
}

var safeLoaders = map[string]bool{
	"SafeLoader":       true,
	"CSafeLoader":      true,
	"yaml.SafeLoader":  true,
	"yaml.CSafeLoader": true,
	"BaseLoader":       true,
	"yaml.BaseLoader":  true,
}
