package scene

// InstanceBuffers плоские буферы инстансов для рендера: позиции тройками,
// ориентации четверками (кватернион x,y,z,w), масштабы и цвета тройками.
// Заполняются одним проходом после завершения интеграции всех частиц;
// Generation увеличивается ровно один раз за кадр, это и есть отметка
// "буферы грязные" для потребителей.
type InstanceBuffers struct {
	HeartPositions []float32
	HeartRotations []float32
	HeartScales    []float32
	HeartColors    []float32

	FireflyPositions []float32
	FireflyScales    []float32
	FireflyColors    []float32

	Generation uint64
}

// NewInstanceBuffers выделяет буферы под hearts сердец и flies светлячков
func NewInstanceBuffers(hearts, flies int) *InstanceBuffers {
	return &InstanceBuffers{
		HeartPositions:   make([]float32, hearts*3),
		HeartRotations:   make([]float32, hearts*4),
		HeartScales:      make([]float32, hearts),
		HeartColors:      make([]float32, hearts*3),
		FireflyPositions: make([]float32, flies*3),
		FireflyScales:    make([]float32, flies),
		FireflyColors:    make([]float32, flies*3),
	}
}

// HeartCount количество сердец в буферах
func (b *InstanceBuffers) HeartCount() int {
	return len(b.HeartScales)
}

// FireflyCount количество светлячков в буферах
func (b *InstanceBuffers) FireflyCount() int {
	return len(b.FireflyScales)
}

// writeHeart записывает один инстанс сердца по индексу i
func (b *InstanceBuffers) writeHeart(i int, x, y, z, qx, qy, qz, qw, scale, cr, cg, cb float32) {
	b.HeartPositions[i*3+0] = x
	b.HeartPositions[i*3+1] = y
	b.HeartPositions[i*3+2] = z

	b.HeartRotations[i*4+0] = qx
	b.HeartRotations[i*4+1] = qy
	b.HeartRotations[i*4+2] = qz
	b.HeartRotations[i*4+3] = qw

	b.HeartScales[i] = scale

	b.HeartColors[i*3+0] = cr
	b.HeartColors[i*3+1] = cg
	b.HeartColors[i*3+2] = cb
}

// writeFirefly записывает один инстанс светлячка по индексу i
func (b *InstanceBuffers) writeFirefly(i int, x, y, z, scale, cr, cg, cb float32) {
	b.FireflyPositions[i*3+0] = x
	b.FireflyPositions[i*3+1] = y
	b.FireflyPositions[i*3+2] = z

	b.FireflyScales[i] = scale

	b.FireflyColors[i*3+0] = cr
	b.FireflyColors[i*3+1] = cg
	b.FireflyColors[i*3+2] = cb
}

// markDirty помечает буферы обновленными; вызывается один раз за кадр
// строго после заполнения
func (b *InstanceBuffers) markDirty() {
	b.Generation++
}
