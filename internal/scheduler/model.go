package scheduler

import "errors"

// 每个个体只有一个基因
const geneCount = 1

// Individual: 一个候选的会议开始时间，基因是时间网格上的下标
type Individual struct {
	genes   []int
	fitness float64
	valid   bool // fitness 是否已经计算过
}

func (ind *Individual) clone() *Individual {
	genes := make([]int, len(ind.genes))
	copy(genes, ind.genes)
	return &Individual{
		genes:   genes,
		fitness: ind.fitness,
		valid:   ind.valid,
	}
}

func (ind *Individual) invalidate() {
	ind.valid = false
}

// 遗传算法参数
// 每次运行都显式传入，不依赖任何全局注册
type Config struct {
	PopulationSize   int     `json:"populationSize"`   // 种群大小
	Generations      int     `json:"generations"`      // 迭代次数，不会提前终止
	CrossoverProb    float64 `json:"crossoverProb"`    // 一对个体进行交叉的概率
	SwapProb         float64 `json:"swapProb"`         // 均匀交叉时每个基因交换的概率
	MutationProb     float64 `json:"mutationProb"`     // 个体发生变异的概率
	GeneMutationProb float64 `json:"geneMutationProb"` // 变异时每个基因被重新随机的概率
	TournamentSize   int     `json:"tournamentSize"`   // 锦标赛选择的规模
	HallOfFameSize   int     `json:"hallOfFameSize"`   // 名人堂大小
	Workers          int     `json:"workers"`          // 并行计算适应度的协程数，1 表示串行
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:   50,
		Generations:      40,
		CrossoverProb:    0.5,
		SwapProb:         0.5,
		MutationProb:     0.2,
		GeneMutationProb: 0.1,
		TournamentSize:   3,
		HallOfFameSize:   1,
		Workers:          1,
	}
}

func validProb(p float64) bool {
	return p >= 0 && p <= 1
}

func (c Config) Validate() error {
	if c.PopulationSize < 1 {
		return errors.New("种群大小必须大于 0")
	}
	if c.Generations < 0 {
		return errors.New("迭代次数不能为负数")
	}
	if !validProb(c.CrossoverProb) || !validProb(c.SwapProb) || !validProb(c.MutationProb) || !validProb(c.GeneMutationProb) {
		return errors.New("概率必须在 0 到 1 之间")
	}
	if c.TournamentSize < 1 {
		return errors.New("锦标赛规模必须大于 0")
	}
	if c.HallOfFameSize < 1 {
		return errors.New("名人堂大小必须大于 0")
	}
	if c.Workers < 1 {
		return errors.New("并行数必须大于 0")
	}
	return nil
}
