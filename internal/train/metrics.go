package train

import "sort"

// Metrics is the held-out performance record for one candidate.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
	ROCAUC    float64 `json:"roc_auc"`
}

// Evaluate scores predicted probabilities against the held-out labels. The
// 0.5 threshold is used for the classification metrics; ROC-AUC is
// threshold-free.
func Evaluate(probs []float64, labels []int) Metrics {
	var tp, fp, tn, fn float64
	for i, p := range probs {
		pred := 0
		if p >= 0.5 {
			pred = 1
		}
		switch {
		case pred == 1 && labels[i] == 1:
			tp++
		case pred == 1 && labels[i] == 0:
			fp++
		case pred == 0 && labels[i] == 0:
			tn++
		default:
			fn++
		}
	}

	m := Metrics{ROCAUC: rocAUC(probs, labels)}
	total := tp + fp + tn + fn
	if total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// rocAUC computes the area under the ROC curve via the rank statistic
// (Mann-Whitney U), with midranks for tied scores.
func rocAUC(probs []float64, labels []int) float64 {
	n := len(probs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		// Midrank over the tie group [i, j).
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}

	var pos, rankSum float64
	for i, l := range labels {
		if l == 1 {
			pos++
			rankSum += ranks[i]
		}
	}
	neg := float64(n) - pos
	if pos == 0 || neg == 0 {
		return 0
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}
