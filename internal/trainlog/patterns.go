package trainlog

import "regexp"

var (
	// progressPattern matches the accelerate/tqdm progress report, e.g.
	// "Steps:  83%|████████▎ | 2500/3000 [3:19:27<39:53,  4.79s/it, lr=0.0002, step_loss=0.0263]".
	// Groups: percent, current, total, elapsed, remaining (optional), lr, loss.
	progressPattern = regexp.MustCompile(`Steps:\s+(\d+)%.*?\|\s+(\d+)/(\d+)\s+\[([^\]<]+)(?:<([^\],]+))?,\s+[\d.]+s/it,\s+lr=([\d.eE+-]+),\s+step_loss=([\d.]+)\]`)

	// checkpointPattern matches "Model weights saved in output/checkpoint-500".
	checkpointPattern = regexp.MustCompile(`Model weights saved in [^/]+/(checkpoint-\d+)`)

	// statePattern matches "Saved state to /abs/path/checkpoint-500".
	statePattern = regexp.MustCompile(`Saved state to .*/(checkpoint-\d+)`)

	// completionPattern matches "Complete Training For 'cats'" with either quote style.
	completionPattern = regexp.MustCompile(`Complete Training For ['"](.+?)['"]`)
)
