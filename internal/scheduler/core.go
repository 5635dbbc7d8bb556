package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"
)

// randomIndividual 随机初始化一个个体
func randomIndividual(rng *rand.Rand) *Individual {
	genes := make([]int, geneCount)
	for i := range genes {
		genes[i] = rng.Intn(TotalIncrements)
	}
	return &Individual{genes: genes}
}

// selectTournament 进行 k 次锦标赛，每次随机（可重复）抽取 size 个个体，选出其中适应度最高的
// 适应度相同时取先抽到的
func selectTournament(rng *rand.Rand, pop []*Individual, k int, size int) []*Individual {
	chosen := make([]*Individual, 0, k)
	for i := 0; i < k; i++ {
		var best *Individual
		for j := 0; j < size; j++ {
			aspirant := pop[rng.Intn(len(pop))]
			if best == nil || aspirant.fitness > best.fitness {
				best = aspirant
			}
		}
		// 复制一份，防止后续交叉和变异修改到同一个个体
		chosen = append(chosen, best.clone())
	}
	return chosen
}

// crossoverUniform 均匀交叉，每个位置以 swapProb 的概率交换
func crossoverUniform(rng *rand.Rand, ind1, ind2 *Individual, swapProb float64) {
	length := min(len(ind1.genes), len(ind2.genes))
	for i := 0; i < length; i++ {
		if rng.Float64() < swapProb {
			ind1.genes[i], ind2.genes[i] = ind2.genes[i], ind1.genes[i]
		}
	}
}

// mutateUniformInt 每个基因以 geneProb 的概率被重新随机为 [low, up] 中的整数
func mutateUniformInt(rng *rand.Rand, ind *Individual, low, up int, geneProb float64) {
	for i := range ind.genes {
		if rng.Float64() < geneProb {
			ind.genes[i] = low + rng.Intn(up-low+1)
		}
	}
}

// vary 先两两交叉再逐个变异，被修改过的个体需要重新计算适应度
func vary(rng *rand.Rand, offspring []*Individual, cfg Config) {
	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() < cfg.CrossoverProb {
			crossoverUniform(rng, offspring[i-1], offspring[i], cfg.SwapProb)
			offspring[i-1].invalidate()
			offspring[i].invalidate()
		}
	}

	for _, ind := range offspring {
		if rng.Float64() < cfg.MutationProb {
			mutateUniformInt(rng, ind, 0, TotalIncrements-1, cfg.GeneMutationProb)
			ind.invalidate()
		}
	}
}

// evaluate 计算所有失效个体的适应度，返回计算的次数
// 适应度的计算互不依赖，workers > 1 时并行计算，结果与串行一致
func evaluate(ctx context.Context, ev *Evaluator, pop []*Individual, workers int) (int, error) {
	pending := make([]*Individual, 0, len(pop))
	for _, ind := range pop {
		if !ind.valid {
			pending = append(pending, ind)
		}
	}

	if workers <= 1 {
		for _, ind := range pending {
			if err := evaluateOne(ev, ind); err != nil {
				return 0, err
			}
		}
		return len(pending), nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ind := range pending {
		g.Go(func() error {
			return evaluateOne(ev, ind)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(pending), nil
}

func evaluateOne(ev *Evaluator, ind *Individual) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("计算适应度时发生 panic: %v", r)
		}
	}()

	ind.fitness = ev.Evaluate(ind.genes[0])
	ind.valid = true
	return nil
}

// hallOfFame 保存迄今为止最好的若干个体，按适应度从高到低排列
type hallOfFame struct {
	size    int
	members []*Individual
}

func newHallOfFame(size int) *hallOfFame {
	return &hallOfFame{size: size, members: make([]*Individual, 0, size)}
}

// update 只有严格优于名人堂中最差个体时才会替换，相同基因的个体不会重复加入
func (h *hallOfFame) update(pop []*Individual) {
	for _, ind := range pop {
		if len(h.members) == h.size && ind.fitness <= h.members[len(h.members)-1].fitness {
			continue
		}
		if slices.ContainsFunc(h.members, func(m *Individual) bool { return slices.Equal(m.genes, ind.genes) }) {
			continue
		}

		if len(h.members) == h.size {
			h.members = h.members[:len(h.members)-1]
		}

		// 插在所有适应度不低于它的个体之后
		pos := len(h.members)
		for i, m := range h.members {
			if ind.fitness > m.fitness {
				pos = i
				break
			}
		}
		h.members = slices.Insert(h.members, pos, ind.clone())
	}
}

func (h *hallOfFame) best() *Individual {
	if len(h.members) == 0 {
		return nil
	}
	return h.members[0]
}
