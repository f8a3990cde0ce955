package ecs

// View1 calls fn for every entity carrying a component of type A.
func View1[A any](r *Registry, fn func(e Entity, a *A)) {
	pa, ok := getPool[A](r)
	if !ok {
		return
	}
	for _, e := range pa.dense() {
		a, _ := pa.get(e)
		fn(e, a)
	}
}

// View2 calls fn for every entity carrying both an A and a B,
// iterating whichever of the two pools is smaller so the scan cost
// tracks the rarer component.
func View2[A, B any](r *Registry, fn func(e Entity, a *A, b *B)) {
	pa, ok := getPool[A](r)
	if !ok {
		return
	}
	pb, ok := getPool[B](r)
	if !ok {
		return
	}

	if pa.len() <= pb.len() {
		for _, e := range pa.dense() {
			if !pb.has(e) {
				continue
			}
			a, _ := pa.get(e)
			b, _ := pb.get(e)
			fn(e, a, b)
		}
		return
	}
	for _, e := range pb.dense() {
		if !pa.has(e) {
			continue
		}
		a, _ := pa.get(e)
		b, _ := pb.get(e)
		fn(e, a, b)
	}
}

// View3 calls fn for every entity carrying an A, a B and a C,
// driving the scan from whichever of the three pools is smallest.
func View3[A, B, C any](r *Registry, fn func(e Entity, a *A, b *B, c *C)) {
	pa, ok := getPool[A](r)
	if !ok {
		return
	}
	pb, ok := getPool[B](r)
	if !ok {
		return
	}
	pc, ok := getPool[C](r)
	if !ok {
		return
	}

	switch {
	case pa.len() <= pb.len() && pa.len() <= pc.len():
		for _, e := range pa.dense() {
			if !pb.has(e) || !pc.has(e) {
				continue
			}
			a, _ := pa.get(e)
			b, _ := pb.get(e)
			c, _ := pc.get(e)
			fn(e, a, b, c)
		}
	case pb.len() <= pa.len() && pb.len() <= pc.len():
		for _, e := range pb.dense() {
			if !pa.has(e) || !pc.has(e) {
				continue
			}
			a, _ := pa.get(e)
			b, _ := pb.get(e)
			c, _ := pc.get(e)
			fn(e, a, b, c)
		}
	default:
		for _, e := range pc.dense() {
			if !pa.has(e) || !pb.has(e) {
				continue
			}
			a, _ := pa.get(e)
			b, _ := pb.get(e)
			c, _ := pc.get(e)
			fn(e, a, b, c)
		}
	}
}
